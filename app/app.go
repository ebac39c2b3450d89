// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app assembles the httpbin server from its [Config].
package app

import (
	"context"
	"io"
	"net"
	"os"

	"github.com/postman-open-technologies/httpbin"
	"github.com/postman-open-technologies/httpbin/internal/health"
	"github.com/postman-open-technologies/httpbin/internal/logging"
	"github.com/postman-open-technologies/httpbin/internal/otelconfig"
	"github.com/postman-open-technologies/httpbin/rest"
	"github.com/postman-open-technologies/httpbin/routes"
	"github.com/postman-open-technologies/httpbin/shaping"
	"github.com/postman-open-technologies/httpbin/static"
	"github.com/postman-open-technologies/httpbin/status"
)

// Option configures a [Builder].
type Option func(*Builder)

// Output sets where logs and stdout spans are written.
func Output(w io.Writer) Option {
	return func(b *Builder) {
		b.out = w
	}
}

// Listener serves on ls instead of listening on the configured address.
func Listener(ls net.Listener) Option {
	return func(b *Builder) {
		b.ls = ls
	}
}

// Builder is a [httpbin.AppBuilder] for [Config].
type Builder struct {
	out io.Writer
	ls  net.Listener
}

// NewBuilder initializes a [Builder] writing to [os.Stdout].
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build implements the [httpbin.AppBuilder] interface.
func (b *Builder) Build(ctx context.Context, cfg Config) (httpbin.App, error) {
	log := logging.New(b.out, cfg.Logging.Level)

	initializer, err := otelconfig.FromConfig(cfg.OTel, b.out)
	if err != nil {
		return nil, err
	}

	shutdownOtel, err := otelconfig.Setup(ctx, initializer)
	if err != nil {
		return nil, err
	}

	store, err := static.NewStore(
		static.Dir(cfg.Static.Dir),
		static.Prefix(cfg.Static.Prefix),
	)
	if err != nil {
		return nil, err
	}

	readiness := health.NewBinary(false)

	opts := routes.Options(routes.Config{
		Log:         log,
		Store:       store,
		Synthesizer: status.NewSynthesizer(status.NewSelector()),
		Liveness:    health.NewBinary(true),
		Readiness:   readiness,
	})
	opts = append(opts,
		rest.Title(cfg.Server.Product),
		rest.Version(cfg.Server.Version),
		rest.Logger(log),
		rest.Readiness(readiness),
		rest.Stages(
			shaping.ServerHeader(cfg.Server.Product, cfg.Server.Version),
			shaping.CORS(),
			shaping.AccessLog(log),
		),
	)
	if b.ls != nil {
		opts = append(opts, rest.Listener(b.ls))
	} else {
		opts = append(opts, rest.ListenOn(cfg.HTTP.Host, uint(cfg.HTTP.Port)))
	}

	app := httpbin.WithLifecycleHooks(
		rest.NewApp(opts...),
		httpbin.Lifecycle{
			PostRun: httpbin.LifecycleHookFunc(shutdownOtel),
		},
	)
	return app, nil
}
