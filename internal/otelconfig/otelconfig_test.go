// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestFromConfig(t *testing.T) {
	t.Run("will return an initializer", func(t *testing.T) {
		testCases := []struct {
			Name     string
			Config   Config
			Expected any
		}{
			{Name: "empty exporter", Config: Config{}, Expected: Noop},
			{Name: "none exporter", Config: Config{Exporter: ExporterNone}, Expected: Noop},
			{Name: "stdout exporter", Config: Config{Exporter: ExporterStdout, ServiceName: "httpbin"}, Expected: LocalConfig{}},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				init, err := FromConfig(testCase.Config, &bytes.Buffer{})
				if !assert.Nil(t, err) {
					return
				}
				if !assert.IsType(t, testCase.Expected, init) {
					return
				}
			})
		}

		t.Run("if the otlp exporter has a target", func(t *testing.T) {
			cfg := Config{ServiceName: "httpbin", Exporter: ExporterOTLP}
			cfg.OTLP.Target = "localhost:4317"

			init, err := FromConfig(cfg, nil)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, OTLP("httpbin", "localhost:4317"), init) {
				return
			}
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the exporter is unknown", func(t *testing.T) {
			_, err := FromConfig(Config{Exporter: "zipkin"}, nil)

			var uerr UnknownExporterError
			if !assert.ErrorAs(t, err, &uerr) {
				return
			}
			if !assert.Equal(t, Exporter("zipkin"), uerr.Exporter) {
				return
			}
			if !assert.Equal(t, `unknown otel exporter: "zipkin"`, uerr.Error()) {
				return
			}
		})

		t.Run("if the otlp exporter has no target", func(t *testing.T) {
			_, err := FromConfig(Config{Exporter: ExporterOTLP}, nil)
			if !assert.ErrorIs(t, err, ErrMissingTarget) {
				return
			}
		})
	})
}

func TestLocalConfig_Init(t *testing.T) {
	t.Run("will write spans to the configured writer", func(t *testing.T) {
		var buf bytes.Buffer
		tp, shutdown, err := Local("httpbin", &buf).Init(context.Background())
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(context.Background(), "status")
		span.End()

		err = shutdown(context.Background())
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Contains(t, buf.String(), `"Name":"status"`) {
			return
		}
		if !assert.Contains(t, buf.String(), "httpbin") {
			return
		}
	})
}

func TestOTLPConfig_Init(t *testing.T) {
	t.Run("will not dial eagerly", func(t *testing.T) {
		tp, shutdown, err := OTLP("httpbin", "localhost:4317").Init(context.Background())
		if !assert.Nil(t, err) {
			return
		}
		if !assert.NotNil(t, tp) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		shutdown(ctx)
	})
}

func TestSetup(t *testing.T) {
	t.Run("will register trace context propagation", func(t *testing.T) {
		shutdown, err := Setup(context.Background(), Noop)
		require.NoError(t, err)
		defer shutdown(context.Background())

		fields := otel.GetTextMapPropagator().Fields()
		if !assert.Contains(t, fields, "traceparent") {
			return
		}
		if !assert.Contains(t, fields, "baggage") {
			return
		}
	})
}
