// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package inspect projects properties of an incoming request into
// JSON serializable values.
package inspect

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// HeadersResponse echoes the request headers.
type HeadersResponse struct {
	Headers map[string]string `json:"headers"`
}

// Headers returns every request header keyed by its lower case name.
// Repeated headers are joined with ", ". The Host header is included
// even though net/http moves it out of the header map.
func Headers(r *http.Request) HeadersResponse {
	headers := make(map[string]string, len(r.Header)+1)
	for name, values := range r.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	if r.Host != "" {
		headers["host"] = r.Host
	}
	return HeadersResponse{Headers: headers}
}

// IPResponse echoes the address of the connected peer.
type IPResponse struct {
	Origin string `json:"origin"`
}

// IP returns the peer IP address with the port stripped.
func IP(r *http.Request) IPResponse {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return IPResponse{Origin: r.RemoteAddr}
	}
	return IPResponse{Origin: host}
}

// UserAgentResponse echoes the request User-Agent.
type UserAgentResponse struct {
	UserAgent string `json:"user_agent"`
}

// MissingHeaderError is returned when a required request header is absent.
type MissingHeaderError struct {
	Header string
}

// Error implements the [error] interface.
func (e MissingHeaderError) Error() string {
	return fmt.Sprintf("Header of type `%s` was missing", strings.ToLower(e.Header))
}

// ServeHTTP implements the [http.Handler] interface.
func (e MissingHeaderError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = io.WriteString(w, e.Error())
}

// UserAgent returns the request User-Agent or a [MissingHeaderError].
func UserAgent(r *http.Request) (UserAgentResponse, error) {
	ua, ok := r.Header["User-Agent"]
	if !ok || len(ua) == 0 {
		return UserAgentResponse{}, MissingHeaderError{Header: "User-Agent"}
	}
	return UserAgentResponse{UserAgent: ua[0]}, nil
}
