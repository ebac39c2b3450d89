// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelconfig initializes the OpenTelemetry tracing pipeline.
package otelconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Exporter names where spans are sent.
type Exporter string

const (
	ExporterNone   Exporter = "none"
	ExporterStdout Exporter = "stdout"
	ExporterOTLP   Exporter = "otlp"
)

// Config selects and configures an [Initializer].
type Config struct {
	ServiceName string   `config:"serviceName"`
	Exporter    Exporter `config:"exporter"`
	OTLP        struct {
		Target string `config:"target"`
	} `config:"otlp"`
}

// UnknownExporterError is returned by [FromConfig] for an unsupported exporter.
type UnknownExporterError struct {
	Exporter Exporter
}

// Error implements the [error] interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown otel exporter: %q", e.Exporter)
}

// ErrMissingTarget is returned when the otlp exporter has no target.
var ErrMissingTarget = errors.New("otelconfig: otlp exporter requires a target")

// ShutdownFunc flushes and releases a tracer provider.
type ShutdownFunc func(context.Context) error

func noShutdown(context.Context) error {
	return nil
}

// Initializer builds a [trace.TracerProvider].
type Initializer interface {
	Init(context.Context) (trace.TracerProvider, ShutdownFunc, error)
}

// Noop leaves the global tracer provider in place.
var Noop = noopInitializer{}

type noopInitializer struct{}

func (noopInitializer) Init(context.Context) (trace.TracerProvider, ShutdownFunc, error) {
	return otel.GetTracerProvider(), noShutdown, nil
}

// FromConfig returns the [Initializer] named by cfg.Exporter. Spans of the
// stdout exporter are written to out.
func FromConfig(cfg Config, out io.Writer) (Initializer, error) {
	switch cfg.Exporter {
	case "", ExporterNone:
		return Noop, nil
	case ExporterStdout:
		return Local(cfg.ServiceName, out), nil
	case ExporterOTLP:
		if cfg.OTLP.Target == "" {
			return nil, ErrMissingTarget
		}
		return OTLP(cfg.ServiceName, cfg.OTLP.Target), nil
	default:
		return nil, UnknownExporterError{Exporter: cfg.Exporter}
	}
}

// LocalConfig writes spans as JSON to Out.
type LocalConfig struct {
	ServiceName string
	Out         io.Writer
}

// Local returns an [Initializer] exporting spans to out, or [os.Stdout] if out is nil.
func Local(serviceName string, out io.Writer) LocalConfig {
	if out == nil {
		out = os.Stdout
	}
	return LocalConfig{
		ServiceName: serviceName,
		Out:         out,
	}
}

// Init implements the [Initializer] interface.
func (cfg LocalConfig) Init(ctx context.Context) (trace.TracerProvider, ShutdownFunc, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cfg.Out),
	)
	if err != nil {
		return nil, nil, err
	}

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, tp.Shutdown, nil
}

func newResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	return resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
}

// Setup initializes the tracer provider and registers it, along with
// trace context and baggage propagation, as the global default.
func Setup(ctx context.Context, init Initializer) (ShutdownFunc, error) {
	tp, shutdown, err := init.Init(ctx)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return shutdown, nil
}
