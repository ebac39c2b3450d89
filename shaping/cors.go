// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaping

import (
	"net/http"
	"strconv"
	"strings"
)

// AllowedMethods is advertised to preflight requests.
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodOptions,
}

// PreflightMaxAge is how long, in seconds, clients may cache a preflight result.
const PreflightMaxAge = 3600

// CORS allows every origin to make credentialed requests.
//
// The allowed origin mirrors the request Origin header, or is "*" without one.
// OPTIONS requests are treated as preflights: the allowed methods, max age and
// mirrored request headers are added and the response always becomes an empty
// 204 No Content, no matter what the wrapped handler returned.
func CORS() Stage {
	methods := strings.Join(AllowedMethods, ", ")
	maxAge := strconv.Itoa(PreflightMaxAge)

	return func(r *http.Request, resp *Response) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		resp.Header.Set("Access-Control-Allow-Origin", origin)
		resp.Header.Set("Access-Control-Allow-Credentials", "true")

		if r.Method != http.MethodOptions {
			return
		}

		resp.Header.Set("Access-Control-Allow-Methods", methods)
		resp.Header.Set("Access-Control-Max-Age", maxAge)
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			resp.Header.Set("Access-Control-Allow-Headers", reqHeaders)
		}

		resp.Status = http.StatusNoContent
		resp.Body.Reset()
		resp.Header.Del("Content-Type")
		resp.Header.Del("Content-Length")
	}
}
