// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinary_Healthy(t *testing.T) {
	t.Run("will be unhealthy", func(t *testing.T) {
		t.Run("if it is the zero value", func(t *testing.T) {
			var b Binary
			assert.False(t, b.Healthy(context.Background()))
		})

		t.Run("if it is set to unhealthy", func(t *testing.T) {
			b := NewBinary(true)
			b.Set(false)
			assert.False(t, b.Healthy(context.Background()))
		})
	})

	t.Run("will be healthy", func(t *testing.T) {
		t.Run("if it is created healthy", func(t *testing.T) {
			b := NewBinary(true)
			assert.True(t, b.Healthy(context.Background()))
		})
	})

	t.Run("will not race", func(t *testing.T) {
		t.Run("if it is set concurrently", func(t *testing.T) {
			b := NewBinary(false)

			var wg sync.WaitGroup
			for i := range 10 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					b.Set(i%2 == 0)
					b.Healthy(context.Background())
				}()
			}
			wg.Wait()
		})
	})
}

func TestAnd(t *testing.T) {
	testCases := []struct {
		Name    string
		Metrics []Metric
		Healthy bool
	}{
		{Name: "no metrics", Healthy: true},
		{Name: "all healthy", Metrics: []Metric{NewBinary(true), NewBinary(true)}, Healthy: true},
		{Name: "one unhealthy", Metrics: []Metric{NewBinary(true), NewBinary(false)}, Healthy: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Healthy, And(testCase.Metrics...).Healthy(context.Background()))
		})
	}
}

func TestHandler(t *testing.T) {
	testCases := []struct {
		Name    string
		Healthy bool
		Status  int
	}{
		{Name: "healthy", Healthy: true, Status: http.StatusOK},
		{Name: "unhealthy", Healthy: false, Status: http.StatusServiceUnavailable},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/health/readiness", nil)

			Handler(NewBinary(testCase.Healthy)).ServeHTTP(w, r)

			if !assert.Equal(t, testCase.Status, w.Code) {
				return
			}
			if !assert.Equal(t, http.StatusText(testCase.Status), w.Body.String()) {
				return
			}
		})
	}
}
