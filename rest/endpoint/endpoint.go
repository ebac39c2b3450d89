// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package endpoint lifts typed request handlers into [http.Handler]s which
// also describe themselves as OpenAPI operations.
package endpoint

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/postman-open-technologies/httpbin/internal/slogfield"

	"github.com/swaggest/openapi-go/openapi3"
)

// Empty is used as the request type of operations which ignore the request.
type Empty struct{}

// Handler handles a decoded request.
type Handler[Req, Resp any] interface {
	Handle(context.Context, *Req) (*Resp, error)
}

// HandlerFunc is a functional implementation of [Handler].
type HandlerFunc[Req, Resp any] func(context.Context, *Req) (*Resp, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req *Req) (*Resp, error) {
	return f(ctx, req)
}

// RequestReader is implemented by request types which decode
// themselves from the incoming [http.Request].
type RequestReader interface {
	ReadRequest(*http.Request) error
}

// ContentTyper is implemented by response types with a fixed or
// computed media type.
type ContentTyper interface {
	ContentType() string
}

// StatusCoder is implemented by response types which choose their own
// HTTP status. A zero status falls back to the operation default.
type StatusCoder interface {
	StatusCode() int
}

// HeaderSetter is implemented by response types which set extra headers.
type HeaderSetter interface {
	SetHeaders(http.Header)
}

// ErrorHandler renders errors which do not implement [http.Handler].
type ErrorHandler interface {
	HandleError(context.Context, http.ResponseWriter, error)
}

// ErrorHandlerFunc is a functional implementation of [ErrorHandler].
type ErrorHandlerFunc func(context.Context, http.ResponseWriter, error)

// HandleError implements the [ErrorHandler] interface.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, w http.ResponseWriter, err error) {
	f(ctx, w, err)
}

// ErrNilHandlerResponse is returned when a [Handler] returns neither a response nor an error.
var ErrNilHandlerResponse = errors.New("endpoint: handler returned a nil response")

var (
	// DefaultStatusCode is used for successful responses which do not implement [StatusCoder].
	DefaultStatusCode = http.StatusOK

	// DefaultErrorStatusCode is written for errors that can not render themselves.
	DefaultErrorStatusCode = http.StatusInternalServerError
)

// LogErrors returns an [ErrorHandler] which logs err and responds with
// [DefaultErrorStatusCode].
func LogErrors(log *slog.Logger) ErrorHandler {
	return ErrorHandlerFunc(func(ctx context.Context, w http.ResponseWriter, err error) {
		log.ErrorContext(ctx, "failed to handle request", slogfield.Error(err))
		http.Error(w, http.StatusText(DefaultErrorStatusCode), DefaultErrorStatusCode)
	})
}

type options struct {
	statusCode   int
	summary      string
	tags         []string
	pathParams   []PathParam
	headers      []Header
	queryParams  []QueryParam
	produces     []string
	returns      []int
	errorHandler ErrorHandler
}

// Option configures an [Operation].
type Option func(*options)

// StatusCode overrides [DefaultStatusCode] for the operation.
func StatusCode(status int) Option {
	return func(o *options) {
		o.statusCode = status
	}
}

// Summary sets the short OpenAPI description of the operation.
func Summary(s string) Option {
	return func(o *options) {
		o.summary = s
	}
}

// Tags groups the operation in the OpenAPI document.
func Tags(tags ...string) Option {
	return func(o *options) {
		o.tags = append(o.tags, tags...)
	}
}

// Produces documents the media types of the successful response. It is
// only needed when the response type does not implement [ContentTyper].
func Produces(contentTypes ...string) Option {
	return func(o *options) {
		o.produces = append(o.produces, contentTypes...)
	}
}

// Returns documents an additional status code the operation may respond with.
func Returns(status int) Option {
	return func(o *options) {
		o.returns = append(o.returns, status)
	}
}

// OnError overrides how errors which do not implement [http.Handler] are written.
func OnError(eh ErrorHandler) Option {
	return func(o *options) {
		o.errorHandler = eh
	}
}

// Operation is an [http.Handler] built from a typed [Handler].
type Operation[Req, Resp any] struct {
	handler      Handler[Req, Resp]
	validators   []func(*http.Request) error
	statusCode   int
	errorHandler ErrorHandler
	openapi      openapi3.Operation
}

// NewOperation initializes an [Operation].
func NewOperation[Req, Resp any](h Handler[Req, Resp], opts ...Option) *Operation[Req, Resp] {
	o := &options{
		statusCode: DefaultStatusCode,
		errorHandler: ErrorHandlerFunc(func(_ context.Context, w http.ResponseWriter, _ error) {
			w.WriteHeader(DefaultErrorStatusCode)
		}),
	}
	for _, opt := range opts {
		opt(o)
	}

	validators := make([]func(*http.Request) error, 0, len(o.pathParams)+len(o.headers)+len(o.queryParams))
	for _, p := range o.pathParams {
		validators = append(validators, validatePathParam(p))
	}
	for _, h := range o.headers {
		validators = append(validators, validateHeader(h))
	}
	for _, qp := range o.queryParams {
		validators = append(validators, validateQueryParam(qp))
	}

	return &Operation[Req, Resp]{
		handler:      h,
		validators:   validators,
		statusCode:   o.statusCode,
		errorHandler: o.errorHandler,
		openapi:      buildOperation[Resp](o),
	}
}

// OpenApi returns the OpenAPI description of the operation.
func (op *Operation[Req, Resp]) OpenApi() openapi3.Operation {
	return op.openapi
}

// ServeHTTP implements the [http.Handler] interface.
func (op *Operation[Req, Resp]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := validateRequest(r, op.validators...)
	if err != nil {
		op.handleError(w, r, err)
		return
	}

	var req Req
	if rr, ok := any(&req).(RequestReader); ok {
		err = rr.ReadRequest(r)
		if err != nil {
			op.handleError(w, r, err)
			return
		}
	}

	resp, err := op.handler.Handle(ctx, &req)
	if err != nil {
		op.handleError(w, r, err)
		return
	}
	if resp == nil {
		op.handleError(w, r, ErrNilHandlerResponse)
		return
	}

	err = op.writeResponse(w, resp)
	if err != nil {
		op.handleError(w, r, err)
		return
	}
}

// writeResponse buffers the body so a failure can still be reported
// with a proper status code.
func (op *Operation[Req, Resp]) writeResponse(w http.ResponseWriter, resp *Resp) error {
	var body bytes.Buffer
	if wt, ok := any(resp).(io.WriterTo); ok {
		_, err := wt.WriteTo(&body)
		if err != nil {
			return err
		}
	}

	status := op.statusCode
	if sc, ok := any(resp).(StatusCoder); ok && sc.StatusCode() != 0 {
		status = sc.StatusCode()
	}

	h := w.Header()
	if ct, ok := any(resp).(ContentTyper); ok && ct.ContentType() != "" {
		h.Set("Content-Type", ct.ContentType())
	}
	if hs, ok := any(resp).(HeaderSetter); ok {
		hs.SetHeaders(h)
	}

	w.WriteHeader(status)
	// the status line is already written so a failed copy can not be reported
	body.WriteTo(w)
	return nil
}

func (op *Operation[Req, Resp]) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var h http.Handler
	if errors.As(err, &h) {
		h.ServeHTTP(w, r)
		return
	}
	op.errorHandler.HandleError(r.Context(), w, err)
}
