// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaping

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/postman-open-technologies/httpbin/internal/slogfield"

	"github.com/google/uuid"
)

// AccessLog logs a single line for every response. Request headers are
// logged under the "headers" group so sensitive values can be masked
// by the logger's handler.
func AccessLog(log *slog.Logger) Stage {
	return func(r *http.Request, resp *Response) {
		headers := make([]any, 0, len(r.Header))
		for name, values := range r.Header {
			headers = append(headers, slogfield.String(strings.ToLower(name), strings.Join(values, ", ")))
		}

		level := slog.LevelInfo
		if resp.Status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}

		log.LogAttrs(
			r.Context(),
			level,
			"handled request",
			slogfield.RequestID(uuid.NewString()),
			slogfield.Method(r.Method),
			slogfield.Path(r.URL.Path),
			slogfield.StatusCode(resp.Status),
			slogfield.Int("http.response_size", resp.Body.Len()),
			slogfield.Duration("http.elapsed", resp.Elapsed),
			slogfield.String("http.remote_addr", r.RemoteAddr),
			slog.Group("headers", headers...),
		)
	}
}
