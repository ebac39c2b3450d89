// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package routes

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/postman-open-technologies/httpbin/inspect"
	"github.com/postman-open-technologies/httpbin/rest"
	"github.com/postman-open-technologies/httpbin/rest/endpoint"
	"github.com/postman-open-technologies/httpbin/rest/mux"
)

type inspectRequest struct {
	r *http.Request
}

func (req *inspectRequest) ReadRequest(r *http.Request) error {
	req.r = r
	return nil
}

func inspectEndpoint[Resp any](pattern, summary string, log *slog.Logger, f func(*http.Request) (Resp, error), opts ...endpoint.Option) rest.Option {
	h := endpoint.HandlerFunc[inspectRequest, Resp](func(_ context.Context, req *inspectRequest) (*Resp, error) {
		resp, err := f(req.r)
		if err != nil {
			return nil, err
		}
		return &resp, nil
	})

	opts = append([]endpoint.Option{
		endpoint.Summary(summary),
		endpoint.Tags("Request inspection"),
		endpoint.OnError(endpoint.LogErrors(log)),
	}, opts...)

	return rest.Register(rest.Endpoint{
		Method:    mux.MethodGet,
		Pattern:   pattern,
		Operation: endpoint.NewOperation(endpoint.ProducesJson(h), opts...),
	})
}

func infallible[Resp any](f func(*http.Request) Resp) func(*http.Request) (Resp, error) {
	return func(r *http.Request) (Resp, error) {
		return f(r), nil
	}
}

func inspectEndpoints(log *slog.Logger) []rest.Option {
	return []rest.Option{
		inspectEndpoint("/headers", "Return the incoming request's HTTP headers", log, infallible(inspect.Headers)),
		inspectEndpoint("/ip", "Returns the requester's IP Address", log, infallible(inspect.IP)),
		inspectEndpoint(
			"/user-agent",
			"Return the incoming requests's User-Agent header",
			log,
			inspect.UserAgent,
			endpoint.Returns(http.StatusBadRequest),
		),
	}
}
