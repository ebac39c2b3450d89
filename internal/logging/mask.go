// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"context"
	"log/slog"
	"strings"
)

// MaskOption helps configure the MaskHandler.
type MaskOption func(*MaskHandler)

// MaskAttr registers a function for masking any slog.Attr whose key
// case-insensitively equals key. Attrs nested in groups are masked as well.
func MaskAttr(key string, f func(slog.Attr) slog.Attr) MaskOption {
	return func(h *MaskHandler) {
		h.attrs[strings.ToLower(key)] = f
	}
}

// MaskMessage registers a function for masking slog.Record messages.
func MaskMessage(f func(string) string) MaskOption {
	return func(h *MaskHandler) {
		h.messages = append(h.messages, f)
	}
}

// Anonymous replaces the value of the given slog.Attr with "****"
// regardless of its original kind.
func Anonymous(a slog.Attr) slog.Attr {
	return slog.String(a.Key, "****")
}

// MaskHandler is an slog.Handler which rewrites sensitive attributes
// and messages before passing records to the wrapped slog.Handler.
type MaskHandler struct {
	slog slog.Handler

	attrs    map[string]func(slog.Attr) slog.Attr
	messages []func(string) string
}

// NewMaskHandler returns a new MaskHandler.
func NewMaskHandler(h slog.Handler, opts ...MaskOption) *MaskHandler {
	mh := &MaskHandler{
		slog:  h,
		attrs: make(map[string]func(slog.Attr) slog.Attr),
	}
	for _, opt := range opts {
		opt(mh)
	}
	return mh
}

// Enabled implements the slog.Handler interface.
func (h *MaskHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *MaskHandler) Handle(ctx context.Context, record slog.Record) error {
	msg := record.Message
	for _, f := range h.messages {
		msg = f(msg)
	}

	nr := slog.NewRecord(record.Time, record.Level, msg, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		nr.AddAttrs(h.mask(a))
		return true
	})
	return h.slog.Handle(ctx, nr)
}

// WithAttrs implements the slog.Handler interface.
func (h *MaskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(a)
	}
	return h.with(h.slog.WithAttrs(masked))
}

// WithGroup implements the slog.Handler interface.
func (h *MaskHandler) WithGroup(name string) slog.Handler {
	return h.with(h.slog.WithGroup(name))
}

func (h *MaskHandler) with(inner slog.Handler) *MaskHandler {
	return &MaskHandler{
		slog:     inner,
		attrs:    h.attrs,
		messages: h.messages,
	}
}

func (h *MaskHandler) mask(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]any, len(group))
		for i, ga := range group {
			masked[i] = h.mask(ga)
		}
		return slog.Group(a.Key, masked...)
	}

	f, ok := h.attrs[strings.ToLower(a.Key)]
	if !ok {
		return a
	}
	return f(a)
}
