// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package routes

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/postman-open-technologies/httpbin/rest"
	"github.com/postman-open-technologies/httpbin/rest/endpoint"
	"github.com/postman-open-technologies/httpbin/rest/mux"
	"github.com/postman-open-technologies/httpbin/static"
)

type assetRoute struct {
	pattern string
	name    string
	summary string
	tag     string
}

var assetRoutes = []assetRoute{
	{pattern: "/", name: static.Index, summary: "Landing page", tag: "Root"},
	{pattern: "/html", name: static.Moby, summary: "Returns a simple HTML document", tag: "Response formats"},
	{pattern: "/encoding/utf8", name: static.UTF8, summary: "Returns a UTF-8 encoded body", tag: "Response formats"},
	{pattern: "/json", name: static.JSON, summary: "Returns a simple JSON document", tag: "Response formats"},
	{pattern: "/robots.txt", name: static.Robots, summary: "Returns some robots.txt rules", tag: "Root"},
	{pattern: "/.well-known/humans.txt", name: static.Humans, summary: "Returns the humans.txt credits", tag: "Root"},
	{pattern: "/.well-known/ai-plugin.json", name: static.AIPlugin, summary: "Returns the AI plugin manifest", tag: "Root"},
	{pattern: "/image/svg", name: static.SVG, summary: "Returns a simple SVG image", tag: "Images"},
	{pattern: "/image/png", name: static.PNG, summary: "Returns a simple PNG image", tag: "Images"},
	{pattern: "/image/jpeg", name: static.JPEG, summary: "Returns a simple JPEG image", tag: "Images"},
	{pattern: "/image/webp", name: static.WEBP, summary: "Returns a simple WEBP image", tag: "Images"},
	{pattern: "/favicon.ico", name: static.Favicon, summary: "Returns the site icon", tag: "Images"},
}

func assetHandler(store *static.Store, name string) endpoint.Handler[endpoint.Empty, static.Asset] {
	return endpoint.HandlerFunc[endpoint.Empty, static.Asset](func(_ context.Context, _ *endpoint.Empty) (*static.Asset, error) {
		return store.Lookup(name)
	})
}

func staticEndpoints(store *static.Store, log *slog.Logger) []rest.Option {
	opts := make([]rest.Option, 0, len(assetRoutes))
	for _, route := range assetRoutes {
		opts = append(opts, rest.Register(rest.Endpoint{
			Method:  mux.MethodGet,
			Pattern: route.pattern,
			Operation: endpoint.NewOperation(
				assetHandler(store, route.name),
				endpoint.Summary(route.summary),
				endpoint.Tags(route.tag),
				endpoint.Produces(static.ContentTypeOf(route.name)),
				endpoint.Returns(http.StatusNotFound),
				endpoint.OnError(staticErrors(store, log)),
			),
		}))
	}
	return opts
}
