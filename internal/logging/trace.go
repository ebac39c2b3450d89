// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"context"
	"log/slog"

	"github.com/postman-open-technologies/httpbin/internal/slogfield"

	"go.opentelemetry.io/otel/trace"
)

// TraceHandler is an slog.Handler which helps standardize and correlate your
// logs by automatically adding the Trace ID and Span ID to your logs.
type TraceHandler struct {
	slog slog.Handler
}

// NewTraceHandler returns a new TraceHandler.
func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{slog: h}
}

// Enabled implements the slog.Handler interface.
func (h *TraceHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *TraceHandler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h.slog.Handle(ctx, record)
	}

	r := record.Clone()
	r.AddAttrs(
		slog.Group(
			"otel",
			slogfield.String("trace_id", spanCtx.TraceID().String()),
			slogfield.String("span_id", spanCtx.SpanID().String()),
		),
	)
	return h.slog.Handle(ctx, r)
}

// WithAttrs implements the slog.Handler interface.
func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewTraceHandler(h.slog.WithAttrs(attrs))
}

// WithGroup implements the slog.Handler interface.
func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return NewTraceHandler(h.slog.WithGroup(name))
}
