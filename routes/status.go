// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package routes

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/postman-open-technologies/httpbin/internal/slogfield"
	"github.com/postman-open-technologies/httpbin/rest"
	"github.com/postman-open-technologies/httpbin/rest/endpoint"
	"github.com/postman-open-technologies/httpbin/rest/mux"
	"github.com/postman-open-technologies/httpbin/status"
)

// StatusMethods are the methods /status/{codes} answers to.
var StatusMethods = []mux.Method{
	mux.MethodGet,
	mux.MethodPost,
	mux.MethodPut,
	mux.MethodPatch,
	mux.MethodDelete,
	mux.MethodTrace,
	mux.MethodHead,
}

type statusRequest struct {
	codes string
	r     *http.Request
}

func (req *statusRequest) ReadRequest(r *http.Request) error {
	req.codes = r.PathValue("codes")
	req.r = r
	return nil
}

type statusHandler struct {
	log   *slog.Logger
	synth *status.Synthesizer
}

func (h *statusHandler) Handle(ctx context.Context, req *statusRequest) (*status.Shape, error) {
	shape, err := h.synth.Synthesize(req.codes, req.r)
	if err != nil {
		h.log.DebugContext(
			ctx,
			"rejected status specifier",
			slogfield.String("codes", req.codes),
			slogfield.Error(err),
		)
	}
	return &shape, nil
}

func statusEndpoints(synth *status.Synthesizer, log *slog.Logger) []rest.Option {
	if synth == nil {
		synth = status.NewSynthesizer(status.NewSelector())
	}

	op := endpoint.NewOperation[statusRequest, status.Shape](
		&statusHandler{log: log, synth: synth},
		endpoint.Summary("Return status code or random status code if more than one are given"),
		endpoint.Tags("Status codes"),
		endpoint.PathParams(endpoint.PathParam{
			Name:        "codes",
			Description: "A status code, or a comma separated list of codes with optional :weight suffixes",
			Required:    true,
		}),
		endpoint.Returns(http.StatusBadRequest),
		endpoint.OnError(endpoint.LogErrors(log)),
	)

	opts := make([]rest.Option, 0, len(StatusMethods))
	for _, method := range StatusMethods {
		opts = append(opts, rest.Register(rest.Endpoint{
			Method:    method,
			Pattern:   "/status/{codes}",
			Operation: op,
		}))
	}
	return opts
}
