// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logging builds the structured logger shared by the server.
package logging

import (
	"io"
	"log/slog"
)

// SensitiveKeys are the attribute keys whose values never reach the log output.
var SensitiveKeys = []string{
	"authorization",
	"cookie",
	"proxy-authorization",
	"set-cookie",
}

// New returns a JSON logger writing to w at the given level. Values of
// [SensitiveKeys] are masked and records logged with a span in their
// context carry the trace and span ids.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	opts := make([]MaskOption, 0, len(SensitiveKeys))
	for _, key := range SensitiveKeys {
		opts = append(opts, MaskAttr(key, Anonymous))
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
	return slog.New(NewTraceHandler(NewMaskHandler(h, opts...)))
}
