// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// OTLPConfig exports spans to an OTLP collector over gRPC.
type OTLPConfig struct {
	ServiceName string

	// gRPC target string which is passed to grpc.NewClient
	Target string
}

// OTLP returns an [Initializer] exporting spans to the collector at target.
func OTLP(serviceName, target string) OTLPConfig {
	return OTLPConfig{
		ServiceName: serviceName,
		Target:      target,
	}
}

// Init implements the [Initializer] interface.
func (cfg OTLPConfig) Init(ctx context.Context) (trace.TracerProvider, ShutdownFunc, error) {
	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, nil, err
	}

	conn, err := grpc.NewClient(
		cfg.Target,
		// Note the use of insecure transport here. TLS is recommended in production.
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, nil, errors.Join(err, conn.Close())
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)

	shutdown := func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), conn.Close())
	}
	return tp, shutdown, nil
}
