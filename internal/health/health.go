// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health reports liveness and readiness of the server.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
)

// Metric represents anything that can report its health status.
type Metric interface {
	Healthy(context.Context) bool
}

// Binary represents a [Metric] that is either healthy or not.
// The zero value is unhealthy.
type Binary struct {
	healthy atomic.Bool
}

// NewBinary returns a [Binary] in the given state.
func NewBinary(healthy bool) *Binary {
	b := &Binary{}
	b.healthy.Store(healthy)
	return b
}

// Set changes the state of b.
func (b *Binary) Set(healthy bool) {
	b.healthy.Store(healthy)
}

// Healthy implements the [Metric] interface.
func (b *Binary) Healthy(context.Context) bool {
	return b.healthy.Load()
}

// AndMetric is healthy only when all of its metrics are.
type AndMetric []Metric

// And joins metrics with the logical and operator.
func And(metrics ...Metric) AndMetric {
	return AndMetric(metrics)
}

// Healthy implements the [Metric] interface.
func (m AndMetric) Healthy(ctx context.Context) bool {
	for _, metric := range m {
		if !metric.Healthy(ctx) {
			return false
		}
	}
	return true
}

// Handler responds with 200 while m is healthy and 503 otherwise.
func Handler(m Metric) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if !m.Healthy(r.Context()) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(http.StatusText(http.StatusServiceUnavailable)))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(http.StatusText(http.StatusOK)))
	})
}
