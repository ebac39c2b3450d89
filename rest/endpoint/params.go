// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"fmt"
	"net/http"
	"regexp"
)

// PathParam describes a wildcard segment of the registered pattern.
type PathParam struct {
	Name        string
	Description string
	Pattern     string
	Required    bool
}

// PathParams documents and validates path parameters.
func PathParams(ps ...PathParam) Option {
	return func(o *options) {
		o.pathParams = append(o.pathParams, ps...)
	}
}

// Header describes a request header.
type Header struct {
	Name        string
	Description string
	Pattern     string
	Required    bool
}

// Headers documents and validates request headers.
func Headers(hs ...Header) Option {
	return func(o *options) {
		o.headers = append(o.headers, hs...)
	}
}

// QueryParam describes a URL query parameter.
type QueryParam struct {
	Name        string
	Description string
	Pattern     string
	Required    bool
}

// QueryParams documents and validates query parameters.
func QueryParams(qps ...QueryParam) Option {
	return func(o *options) {
		o.queryParams = append(o.queryParams, qps...)
	}
}

func validateRequest(r *http.Request, validators ...func(*http.Request) error) error {
	for _, validator := range validators {
		err := validator(r)
		if err != nil {
			return err
		}
	}
	return nil
}

// InvalidPathParamError represents a path parameter which does not match its pattern.
type InvalidPathParamError struct {
	Param string
}

// Error implements the [error] interface.
func (e InvalidPathParamError) Error() string {
	return fmt.Sprintf("received invalid path parameter for endpoint: %s", e.Param)
}

// ServeHTTP implements the [http.Handler] interface.
func (InvalidPathParamError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusBadRequest)
}

// MissingRequiredPathParamError represents an empty required path parameter.
type MissingRequiredPathParamError struct {
	Param string
}

// Error implements the [error] interface.
func (e MissingRequiredPathParamError) Error() string {
	return fmt.Sprintf("missing required path parameter for endpoint: %s", e.Param)
}

// ServeHTTP implements the [http.Handler] interface.
func (MissingRequiredPathParamError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusBadRequest)
}

// InvalidHeaderError represents a header value which does not match its pattern.
type InvalidHeaderError struct {
	Header string
}

// Error implements the [error] interface.
func (e InvalidHeaderError) Error() string {
	return fmt.Sprintf("received invalid header for endpoint: %s", e.Header)
}

// ServeHTTP implements the [http.Handler] interface.
func (InvalidHeaderError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusBadRequest)
}

// MissingRequiredHeaderError represents an absent required header.
type MissingRequiredHeaderError struct {
	Header string
}

// Error implements the [error] interface.
func (e MissingRequiredHeaderError) Error() string {
	return fmt.Sprintf("missing required header for endpoint: %s", e.Header)
}

// ServeHTTP implements the [http.Handler] interface.
func (MissingRequiredHeaderError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusBadRequest)
}

// InvalidQueryParamError represents a query parameter which does not match its pattern.
type InvalidQueryParamError struct {
	Param string
}

// Error implements the [error] interface.
func (e InvalidQueryParamError) Error() string {
	return fmt.Sprintf("received invalid query parameter for endpoint: %s", e.Param)
}

// ServeHTTP implements the [http.Handler] interface.
func (InvalidQueryParamError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusBadRequest)
}

// MissingRequiredQueryParamError represents an absent required query parameter.
type MissingRequiredQueryParamError struct {
	Param string
}

// Error implements the [error] interface.
func (e MissingRequiredQueryParamError) Error() string {
	return fmt.Sprintf("missing required query parameter for endpoint: %s", e.Param)
}

// ServeHTTP implements the [http.Handler] interface.
func (MissingRequiredQueryParamError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusBadRequest)
}

func compilePattern(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	return regexp.MustCompile(pattern)
}

// validateValue checks presence before the pattern so an optional, absent
// value is never matched against it.
func validateValue(val string, required bool, pattern *regexp.Regexp, missing, invalid error) error {
	if val == "" {
		if required {
			return missing
		}
		return nil
	}
	if pattern != nil && !pattern.MatchString(val) {
		return invalid
	}
	return nil
}

func validatePathParam(p PathParam) func(*http.Request) error {
	pattern := compilePattern(p.Pattern)
	return func(r *http.Request) error {
		return validateValue(
			r.PathValue(p.Name),
			p.Required,
			pattern,
			MissingRequiredPathParamError{Param: p.Name},
			InvalidPathParamError{Param: p.Name},
		)
	}
}

func validateHeader(h Header) func(*http.Request) error {
	pattern := compilePattern(h.Pattern)
	return func(r *http.Request) error {
		return validateValue(
			r.Header.Get(h.Name),
			h.Required,
			pattern,
			MissingRequiredHeaderError{Header: h.Name},
			InvalidHeaderError{Header: h.Name},
		)
	}
}

func validateQueryParam(qp QueryParam) func(*http.Request) error {
	pattern := compilePattern(qp.Pattern)
	return func(r *http.Request) error {
		return validateValue(
			r.URL.Query().Get(qp.Name),
			qp.Required,
			pattern,
			MissingRequiredQueryParamError{Param: qp.Name},
			InvalidQueryParamError{Param: qp.Name},
		)
	}
}
