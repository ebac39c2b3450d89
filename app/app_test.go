// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/postman-open-technologies/httpbin"
	"github.com/postman-open-technologies/httpbin/config"
	"github.com/postman-open-technologies/httpbin/internal/otelconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"PORT", "LOG_LEVEL", "OTEL_TRACES_EXPORTER", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(name, "")
	}
}

func readConfig(t *testing.T, srcs ...config.Source) Config {
	t.Helper()

	m, err := config.Read(srcs...)
	require.NoError(t, err)

	var cfg Config
	err = m.Unmarshal(&cfg)
	require.NoError(t, err)
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	t.Run("will decode the defaults", func(t *testing.T) {
		clearConfigEnv(t)

		cfg := readConfig(t, DefaultConfig())

		assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
		assert.Equal(t, uint16(8080), cfg.HTTP.Port)
		assert.Equal(t, slog.LevelInfo, cfg.Logging.Level)
		assert.Equal(t, "httpbin", cfg.OTel.ServiceName)
		assert.Equal(t, otelconfig.ExporterNone, cfg.OTel.Exporter)
		assert.Equal(t, "localhost:4317", cfg.OTel.OTLP.Target)
		assert.Equal(t, "", cfg.Static.Dir)
		assert.Equal(t, "httpbin-rs", cfg.Server.Product)
		assert.Equal(t, "0.1.0", cfg.Server.Version)
	})

	t.Run("will honour the template environment variables", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("PORT", "9999")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("OTEL_TRACES_EXPORTER", "stdout")

		cfg := readConfig(t, DefaultConfig())

		assert.Equal(t, uint16(9999), cfg.HTTP.Port)
		assert.Equal(t, slog.LevelDebug, cfg.Logging.Level)
		assert.Equal(t, otelconfig.ExporterStdout, cfg.OTel.Exporter)
	})

	t.Run("will be overridden by prefixed environment variables", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("HTTPBIN_HTTP_PORT", "7000")
		t.Setenv("HTTPBIN_SERVER_PRODUCT", "httpbin-go")

		cfg := readConfig(t, DefaultConfig(), config.FromEnv("HTTPBIN"))

		assert.Equal(t, uint16(7000), cfg.HTTP.Port)
		assert.Equal(t, "httpbin-go", cfg.Server.Product)
	})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBuilder_Build(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the otel exporter is unknown", func(t *testing.T) {
			var cfg Config
			cfg.OTel.Exporter = "zipkin"

			_, err := NewBuilder(Output(io.Discard)).Build(context.Background(), cfg)

			var uerr otelconfig.UnknownExporterError
			if !assert.ErrorAs(t, err, &uerr) {
				return
			}
		})
	})

	t.Run("will serve httpbin", func(t *testing.T) {
		t.Run("until the context is cancelled", func(t *testing.T) {
			clearConfigEnv(t)

			ls, err := net.Listen("tcp", "127.0.0.1:0")
			require.NoError(t, err)

			var out syncBuffer
			builder := NewBuilder(Output(&out), Listener(ls))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpbin.Run[Config](
					ctx,
					builder,
					DefaultConfig(),
					config.Map{"server": map[string]any{"version": "9.9.9"}},
				)
			}()

			addr := "http://" + ls.Addr().String()
			var resp *http.Response
			ok := assert.Eventually(t, func() bool {
				resp, err = http.Get(addr + "/health/readiness")
				if err != nil {
					return false
				}
				resp.Body.Close()
				return resp.StatusCode == http.StatusOK
			}, 5*time.Second, 20*time.Millisecond)
			if !ok {
				return
			}

			resp, err = http.Get(addr + "/status/418")
			if !assert.Nil(t, err) {
				return
			}
			resp.Body.Close()

			if !assert.Equal(t, http.StatusTeapot, resp.StatusCode) {
				return
			}
			if !assert.Equal(t, "httpbin-rs/9.9.9", resp.Header.Get("Server")) {
				return
			}
			if !assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin")) {
				return
			}

			cancel()
			select {
			case err := <-errCh:
				if !assert.Nil(t, err) {
					return
				}
			case <-time.After(10 * time.Second):
				t.Fatal("server did not shut down")
			}

			if !assert.Contains(t, out.String(), `"http.status_code":418`) {
				return
			}
		})
	})
}
