// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest serves a set of documented endpoints over HTTP.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/postman-open-technologies/httpbin/internal/health"
	"github.com/postman-open-technologies/httpbin/internal/slogfield"
	"github.com/postman-open-technologies/httpbin/rest/endpoint"
	"github.com/postman-open-technologies/httpbin/rest/mux"
	"github.com/postman-open-technologies/httpbin/shaping"

	"github.com/swaggest/openapi-go/openapi3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Option represents configurable attributes of [App].
type Option func(*App)

// Listener allows you to configure the [net.Listener] for
// the underlying [http.Server] to use for serving requests.
//
// If this option is not supplied, then [net.Listen] will be
// used to create a [net.Listener] for "tcp" and the address set by [ListenOn].
func Listener(ls net.Listener) Option {
	return func(a *App) {
		a.ls = ls
	}
}

// ListenOn sets the host and port the [App] listens on when no
// [Listener] is given. A port of 0 picks any free port.
func ListenOn(host string, port uint) Option {
	return func(a *App) {
		a.addr = net.JoinHostPort(host, fmt.Sprint(port))
	}
}

// Logger sets the [slog.Logger] used to report server lifecycle events.
func Logger(log *slog.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// OpenApiEndpoint registers a [http.Handler] with the underlying mux
// meant for serving the OpenAPI document.
func OpenApiEndpoint(method mux.Method, pattern string, f func(*openapi3.Spec) http.Handler) Option {
	return func(a *App) {
		a.openApiEndpoint = func(m Mux) {
			m.Handle(method, pattern, f(a.spec))
		}
	}
}

type openApiHandler struct {
	spec        *openapi3.Spec
	contentType string
	marshal     func(any) ([]byte, error)
}

func (h openApiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, err := h.marshal(h.spec)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", h.contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, bytes.NewReader(b))
}

// OpenApiYamlHandler returns an [http.Handler] which will respond with the OpenAPI document as YAML.
func OpenApiYamlHandler(spec *openapi3.Spec) http.Handler {
	return openApiHandler{
		spec:        spec,
		contentType: "application/yaml",
		marshal:     marshalYaml,
	}
}

// the openapi3 types only carry json tags so the document is
// converted through its json form first
func marshalYaml(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var doc any
	err = json.Unmarshal(b, &doc)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

type specHandler struct {
	spec *openapi3.Spec
}

func (h *specHandler) Handle(_ context.Context, _ *endpoint.Empty) (*openapi3.Spec, error) {
	return h.spec, nil
}

// OpenApiJsonHandler returns an [http.Handler] which will respond with the OpenAPI document as JSON.
func OpenApiJsonHandler(eh endpoint.ErrorHandler) func(*openapi3.Spec) http.Handler {
	return func(spec *openapi3.Spec) http.Handler {
		return endpoint.NewOperation(
			endpoint.ProducesJson(&specHandler{spec: spec}),
			endpoint.OnError(eh),
		)
	}
}

// Operation represents anything that can handle HTTP requests
// and provide OpenAPI documentation for itself.
type Operation interface {
	http.Handler

	OpenApi() openapi3.Operation
}

// Endpoint represents all information necessary for registering
// an [Operation] with a [App].
type Endpoint struct {
	Method    mux.Method
	Pattern   string
	Operation Operation
}

// Register registers the [Endpoint] with both
// the App wide OpenAPI spec and the App wide HTTP server.
//
// "/" is always treated as "/{$}" because it would otherwise
// match too broadly and cause conflicts with other paths.
func Register(e Endpoint) Option {
	return func(app *App) {
		app.endpoints = append(app.endpoints, e)
	}
}

// Handle registers a plain [http.Handler] which is served but not
// documented in the OpenAPI spec.
func Handle(method mux.Method, pattern string, h http.Handler) Option {
	return func(app *App) {
		app.handlers = append(app.handlers, func(m Mux) {
			m.Handle(method, pattern, h)
		})
	}
}

// TracerProvider sets the provider request spans are recorded with.
// Defaults to the global provider.
func TracerProvider(tp trace.TracerProvider) Option {
	return func(app *App) {
		app.tracerProvider = tp
	}
}

// Title sets the title of the API in its OpenAPI spec.
func Title(s string) Option {
	return func(a *App) {
		a.spec.Info.Title = s
	}
}

// Version sets the API version in its OpenAPI spec.
func Version(s string) Option {
	return func(a *App) {
		a.spec.Info.Version = s
	}
}

// Stages sets the response shaping stages applied, in order, to every response.
func Stages(stages ...shaping.Stage) Option {
	return func(a *App) {
		a.stages = append(a.stages, stages...)
	}
}

// NotFound sets the handler for requests matching no registered pattern.
func NotFound(h http.Handler) Option {
	return func(a *App) {
		a.muxOpts = append(a.muxOpts, mux.NotFoundHandler(h))
	}
}

// MethodNotAllowed sets the handler for requests to a known pattern
// with an unregistered method.
func MethodNotAllowed(h http.Handler) Option {
	return func(a *App) {
		a.muxOpts = append(a.muxOpts, mux.MethodNotAllowedHandler(h))
	}
}

// Readiness is set healthy once the [App] accepts connections
// and unhealthy as soon as it begins shutting down.
func Readiness(b *health.Binary) Option {
	return func(a *App) {
		a.readiness = b
	}
}

// ShutdownTimeout bounds how long in-flight requests may take to finish
// after the [App] is asked to stop.
func ShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		a.shutdownTimeout = d
	}
}

// Mux is the request multiplexer endpoints are registered with.
type Mux interface {
	http.Handler

	Handle(method mux.Method, pattern string, h http.Handler)
}

// App serves documented endpoints until its context is cancelled.
type App struct {
	ls   net.Listener
	addr string
	log  *slog.Logger

	spec      *openapi3.Spec
	muxOpts   []mux.HttpOption
	endpoints []Endpoint
	handlers  []func(Mux)
	stages    []shaping.Stage

	openApiEndpoint func(Mux)

	readiness       *health.Binary
	shutdownTimeout time.Duration
	tracerProvider  trace.TracerProvider

	listen func(network, addr string) (net.Listener, error)
}

// NewApp initializes a [App].
func NewApp(opts ...Option) *App {
	app := &App{
		addr: ":80",
		log:  slog.New(slog.DiscardHandler),
		spec: &openapi3.Spec{
			Openapi: "3.0.3",
		},
		listen:          net.Listen,
		openApiEndpoint: func(_ Mux) {},
		readiness:       health.NewBinary(false),
		shutdownTimeout: 10 * time.Second,
		tracerProvider:  otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Handler builds the complete [http.Handler] served by the [App].
func (app *App) Handler() (http.Handler, error) {
	m := mux.NewHttp(app.muxOpts...)

	app.openApiEndpoint(m)
	for _, register := range app.handlers {
		register(m)
	}

	err := app.registerEndpoints(m)
	if err != nil {
		return nil, err
	}

	return otelhttp.NewHandler(
		shaping.Chain(m, app.stages...),
		"server",
		otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
		otelhttp.WithSpanNameFormatter(spanName),
		otelhttp.WithTracerProvider(app.tracerProvider),
	), nil
}

// spanName follows the HTTP server span convention for requests whose
// route is not known until the mux has matched it.
func spanName(_ string, r *http.Request) string {
	return r.Method
}

// Run serves requests until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	h, err := app.Handler()
	if err != nil {
		return err
	}

	ls, err := app.listener()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	app.log.InfoContext(ctx, "serving http", slogfield.String("addr", ls.Addr().String()))
	app.readiness.Set(true)

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return httpServer.Serve(ls)
	})
	eg.Go(func() error {
		<-egctx.Done()
		app.readiness.Set(false)
		app.log.InfoContext(egctx, "shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(egctx), app.shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = eg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) listener() (net.Listener, error) {
	if app.ls != nil {
		return app.ls, nil
	}
	return app.listen("tcp", app.addr)
}

func (app *App) registerEndpoints(m Mux) error {
	for _, e := range app.endpoints {
		// {$} only anchors the end of the path for http.ServeMux
		// and would be read as a path parameter by OpenAPI tooling.
		trimmedPattern := strings.TrimSuffix(e.Pattern, "{$}")

		// OpenAPI has no equivalent of the "..." wildcard.
		trimmedPattern = strings.ReplaceAll(trimmedPattern, "...", "")

		err := app.spec.AddOperation(string(e.Method), trimmedPattern, e.Operation.OpenApi())
		if err != nil {
			return err
		}

		// "/" would otherwise match every path
		if e.Pattern == "/" {
			e.Pattern = "/{$}"
		}

		m.Handle(e.Method, e.Pattern, e.Operation)
	}
	return nil
}
