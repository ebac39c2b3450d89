// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shaping applies an ordered list of response transforms to
// every response produced by an [http.Handler].
package shaping

import (
	"bytes"
	"net/http"
	"time"
)

// Response is a fully buffered response which stages may rewrite.
type Response struct {
	Status int
	Header http.Header
	Body   bytes.Buffer

	// Elapsed is how long the wrapped handler took to produce the response.
	Elapsed time.Duration
}

// Stage transforms a buffered response. Stages can not fail.
type Stage func(*http.Request, *Response)

// Chain buffers the response of h and applies each stage, in order,
// before writing the final response to the client.
func Chain(h http.Handler, stages ...Stage) http.Handler {
	return &chain{
		inner:  h,
		stages: stages,
	}
}

type chain struct {
	inner  http.Handler
	stages []Stage
}

// ServeHTTP implements the [http.Handler] interface.
func (c *chain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bw := &bufferedWriter{
		resp: &Response{
			Header: make(http.Header),
		},
	}
	c.inner.ServeHTTP(bw, r)

	resp := bw.resp
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	resp.Elapsed = time.Since(start)

	for _, stage := range c.stages {
		stage(r, resp)
	}

	h := w.Header()
	for name, values := range resp.Header {
		h[name] = values
	}
	w.WriteHeader(resp.Status)
	if !bodyAllowed(resp.Status) {
		return
	}
	_, _ = resp.Body.WriteTo(w)
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

type bufferedWriter struct {
	resp        *Response
	wroteHeader bool
}

func (w *bufferedWriter) Header() http.Header {
	return w.resp.Header
}

func (w *bufferedWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.resp.Status = status
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.resp.Body.Write(b)
}
