// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package routes maps the httpbin operations onto HTTP endpoints.
package routes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/postman-open-technologies/httpbin/internal/health"
	"github.com/postman-open-technologies/httpbin/internal/slogfield"
	"github.com/postman-open-technologies/httpbin/rest"
	"github.com/postman-open-technologies/httpbin/rest/endpoint"
	"github.com/postman-open-technologies/httpbin/rest/mux"
	"github.com/postman-open-technologies/httpbin/static"
	"github.com/postman-open-technologies/httpbin/status"
)

// Config holds the collaborators the routes are served by.
type Config struct {
	Log         *slog.Logger
	Store       *static.Store
	Synthesizer *status.Synthesizer
	Liveness    health.Metric
	Readiness   health.Metric
}

// Options returns the [rest.Option]s registering every route.
func Options(cfg Config) []rest.Option {
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var opts []rest.Option
	opts = append(opts, statusEndpoints(cfg.Synthesizer, log)...)
	opts = append(opts, inspectEndpoints(log)...)
	opts = append(opts, staticEndpoints(cfg.Store, log)...)
	opts = append(opts, imageEndpoints(cfg.Store, log)...)
	opts = append(opts,
		rest.Register(apiDocsEndpoint()),
		rest.OpenApiEndpoint(mux.MethodGet, "/openapi.yaml", rest.OpenApiYamlHandler),
		rest.NotFound(NotFoundHandler(cfg.Store)),
		rest.MethodNotAllowed(http.HandlerFunc(methodNotAllowed)),
	)
	if cfg.Liveness != nil {
		opts = append(opts, rest.Handle(mux.MethodGet, "/health/liveness", health.Handler(cfg.Liveness)))
	}
	if cfg.Readiness != nil {
		opts = append(opts, rest.Handle(mux.MethodGet, "/health/readiness", health.Handler(cfg.Readiness)))
	}
	return opts
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// NotFoundHandler responds with the not found page, or plain text if
// the page itself is missing.
func NotFoundHandler(store *static.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w, store)
	})
}

func writeNotFound(w http.ResponseWriter, store *static.Store) {
	asset, err := store.Lookup(static.NotFound)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", asset.ContentType())
	w.WriteHeader(http.StatusNotFound)
	_, _ = asset.WriteTo(w)
}

// staticErrors renders missing assets as the not found page and logs
// anything else as an internal error.
func staticErrors(store *static.Store, log *slog.Logger) endpoint.ErrorHandler {
	internal := endpoint.LogErrors(log)
	return endpoint.ErrorHandlerFunc(func(ctx context.Context, w http.ResponseWriter, err error) {
		if errors.Is(err, static.ErrNotFound) {
			log.WarnContext(ctx, "static asset missing", slogfield.Error(err))
			writeNotFound(w, store)
			return
		}
		internal.HandleError(ctx, w, err)
	})
}

// APIDocsLocation is the hosted Redoc viewer for the httpbin OpenAPI document.
const APIDocsLocation = "https://redocly.github.io/redoc/?url=https://raw.githubusercontent.com/postman-open-technologies/httpbin-rs/main/src/templates/openapi.yaml&nocors"

type redirect struct {
	location string
}

func (*redirect) StatusCode() int {
	return http.StatusPermanentRedirect
}

func (resp *redirect) SetHeaders(h http.Header) {
	h.Set("Location", resp.location)
}

func apiDocsEndpoint() rest.Endpoint {
	return rest.Endpoint{
		Method:  mux.MethodGet,
		Pattern: "/api-docs",
		Operation: endpoint.NewOperation(
			endpoint.HandlerFunc[endpoint.Empty, redirect](func(_ context.Context, _ *endpoint.Empty) (*redirect, error) {
				return &redirect{location: APIDocsLocation}, nil
			}),
			endpoint.StatusCode(http.StatusPermanentRedirect),
			endpoint.Summary("Redirects to the rendered API documentation"),
			endpoint.Tags("Root"),
		),
	}
}
