// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type JsonContent struct {
	Value string `json:"value"`
}

type textResponse struct {
	status int
	body   string
}

func (*textResponse) ContentType() string {
	return "text/plain"
}

func (resp *textResponse) StatusCode() int {
	return resp.status
}

func (resp *textResponse) SetHeaders(h http.Header) {
	h.Set("X-Text", "yes")
}

func (resp *textResponse) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, resp.body)
	return int64(n), err
}

type failingBody struct{}

func (failingBody) WriteTo(io.Writer) (int64, error) {
	return 0, errors.New("failed to write body")
}

type echoRequest struct {
	name string
}

func (req *echoRequest) ReadRequest(r *http.Request) error {
	req.name = r.URL.Query().Get("name")
	if req.name == "" {
		return httpError{status: http.StatusUnprocessableEntity}
	}
	return nil
}

type httpError struct {
	status int
}

func (httpError) Error() string {
	return "http error"
}

func (e httpError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(e.status)
}

func TestOperation_ServeHTTP(t *testing.T) {
	t.Run("will return the default success http status code", func(t *testing.T) {
		t.Run("if the underlying Handler succeeds with an empty response", func(t *testing.T) {
			op := NewOperation(HandlerFunc[Empty, Empty](func(_ context.Context, _ *Empty) (*Empty, error) {
				return &Empty{}, nil
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			resp := w.Result()
			if !assert.Equal(t, DefaultStatusCode, resp.StatusCode) {
				return
			}
			if !assert.Empty(t, w.Body.Bytes()) {
				return
			}
		})
	})

	t.Run("will return the configured status code", func(t *testing.T) {
		t.Run("if the StatusCode option is used", func(t *testing.T) {
			op := NewOperation(
				HandlerFunc[Empty, Empty](func(_ context.Context, _ *Empty) (*Empty, error) {
					return &Empty{}, nil
				}),
				StatusCode(http.StatusCreated),
			)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", nil)

			op.ServeHTTP(w, r)

			if !assert.Equal(t, http.StatusCreated, w.Result().StatusCode) {
				return
			}
		})

		t.Run("if the response implements StatusCoder", func(t *testing.T) {
			op := NewOperation(HandlerFunc[Empty, textResponse](func(_ context.Context, _ *Empty) (*textResponse, error) {
				return &textResponse{status: http.StatusTeapot, body: "short and stout"}, nil
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			resp := w.Result()
			if !assert.Equal(t, http.StatusTeapot, resp.StatusCode) {
				return
			}
			if !assert.Equal(t, "text/plain", resp.Header.Get("Content-Type")) {
				return
			}
			if !assert.Equal(t, "yes", resp.Header.Get("X-Text")) {
				return
			}
			if !assert.Equal(t, "short and stout", w.Body.String()) {
				return
			}
		})

		t.Run("if the response StatusCoder returns zero", func(t *testing.T) {
			op := NewOperation(HandlerFunc[Empty, textResponse](func(_ context.Context, _ *Empty) (*textResponse, error) {
				return &textResponse{body: "ok"}, nil
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			if !assert.Equal(t, DefaultStatusCode, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will write json", func(t *testing.T) {
		t.Run("if the handler is wrapped with ProducesJson", func(t *testing.T) {
			op := NewOperation(ProducesJson(HandlerFunc[Empty, JsonContent](func(_ context.Context, _ *Empty) (*JsonContent, error) {
				return &JsonContent{Value: "hello, world"}, nil
			})))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			resp := w.Result()
			if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
				return
			}
			if !assert.Equal(t, "application/json", resp.Header.Get("Content-Type")) {
				return
			}

			var jc JsonContent
			err := json.Unmarshal(w.Body.Bytes(), &jc)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "hello, world", jc.Value) {
				return
			}
		})
	})

	t.Run("will read the request", func(t *testing.T) {
		t.Run("if the request type implements RequestReader", func(t *testing.T) {
			op := NewOperation(HandlerFunc[echoRequest, textResponse](func(_ context.Context, req *echoRequest) (*textResponse, error) {
				return &textResponse{body: req.name}, nil
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/?name=bob", nil)

			op.ServeHTTP(w, r)

			if !assert.Equal(t, "bob", w.Body.String()) {
				return
			}
		})

		t.Run("and render the error if reading fails", func(t *testing.T) {
			op := NewOperation(HandlerFunc[echoRequest, textResponse](func(_ context.Context, req *echoRequest) (*textResponse, error) {
				return &textResponse{body: req.name}, nil
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			if !assert.Equal(t, http.StatusUnprocessableEntity, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will return the default error status code", func(t *testing.T) {
		t.Run("if the underlying Handler returns a plain error", func(t *testing.T) {
			op := NewOperation(HandlerFunc[Empty, Empty](func(_ context.Context, _ *Empty) (*Empty, error) {
				return nil, errors.New("failed")
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			if !assert.Equal(t, DefaultErrorStatusCode, w.Result().StatusCode) {
				return
			}
		})

		t.Run("if the underlying Handler returns a nil response", func(t *testing.T) {
			var caught error
			op := NewOperation(
				HandlerFunc[Empty, Empty](func(_ context.Context, _ *Empty) (*Empty, error) {
					return nil, nil
				}),
				OnError(ErrorHandlerFunc(func(_ context.Context, w http.ResponseWriter, err error) {
					caught = err
					w.WriteHeader(DefaultErrorStatusCode)
				})),
			)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			if !assert.Equal(t, DefaultErrorStatusCode, w.Result().StatusCode) {
				return
			}
			if !assert.ErrorIs(t, caught, ErrNilHandlerResponse) {
				return
			}
		})

		t.Run("if the response body fails to write", func(t *testing.T) {
			op := NewOperation(HandlerFunc[Empty, failingBody](func(_ context.Context, _ *Empty) (*failingBody, error) {
				return &failingBody{}, nil
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			if !assert.Equal(t, DefaultErrorStatusCode, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will let the error render itself", func(t *testing.T) {
		t.Run("if the error implements http.Handler", func(t *testing.T) {
			op := NewOperation(HandlerFunc[Empty, Empty](func(_ context.Context, _ *Empty) (*Empty, error) {
				return nil, httpError{status: http.StatusConflict}
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			if !assert.Equal(t, http.StatusConflict, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will log the error", func(t *testing.T) {
		t.Run("if the LogErrors handler is used", func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, nil))

			op := NewOperation(
				HandlerFunc[Empty, Empty](func(_ context.Context, _ *Empty) (*Empty, error) {
					return nil, errors.New("boom")
				}),
				OnError(LogErrors(log)),
			)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			op.ServeHTTP(w, r)

			if !assert.Equal(t, DefaultErrorStatusCode, w.Result().StatusCode) {
				return
			}
			if !assert.True(t, strings.Contains(buf.String(), "boom")) {
				return
			}
		})
	})
}
