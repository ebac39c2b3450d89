// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package routes

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/postman-open-technologies/httpbin/rest"
	"github.com/postman-open-technologies/httpbin/rest/endpoint"
	"github.com/postman-open-technologies/httpbin/rest/mux"
	"github.com/postman-open-technologies/httpbin/static"
)

var imagesByMediaType = map[string]string{
	"image/svg+xml": static.SVG,
	"image/jpeg":    static.JPEG,
	"image/webp":    static.WEBP,
	"image/png":     static.PNG,
	"image/*":       static.PNG,
}

// NegotiateImage picks the image asset for an Accept header. The first
// media range naming a known image wins and PNG is the fallback.
func NegotiateImage(accept string) string {
	for _, mediaRange := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(mediaRange))
		if err != nil {
			continue
		}
		if name, ok := imagesByMediaType[mediaType]; ok {
			return name
		}
	}
	return static.PNG
}

type imageRequest struct {
	accept string
}

func (req *imageRequest) ReadRequest(r *http.Request) error {
	req.accept = r.Header.Get("Accept")
	return nil
}

func imageEndpoints(store *static.Store, log *slog.Logger) []rest.Option {
	h := endpoint.HandlerFunc[imageRequest, static.Asset](func(_ context.Context, req *imageRequest) (*static.Asset, error) {
		return store.Lookup(NegotiateImage(req.accept))
	})

	return []rest.Option{
		rest.Register(rest.Endpoint{
			Method:  mux.MethodGet,
			Pattern: "/image",
			Operation: endpoint.NewOperation(
				h,
				endpoint.Summary("Returns a simple image of the type suggested by the Accept header"),
				endpoint.Tags("Images"),
				endpoint.Headers(endpoint.Header{Name: "Accept"}),
				endpoint.Produces(
					static.ContentTypeOf(static.PNG),
					static.ContentTypeOf(static.SVG),
					static.ContentTypeOf(static.JPEG),
					static.ContentTypeOf(static.WEBP),
				),
				endpoint.Returns(http.StatusNotFound),
				endpoint.OnError(staticErrors(store, log)),
			),
		}),
	}
}
