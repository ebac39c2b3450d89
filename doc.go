// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httpbin runs an HTTP request and response diagnostic service.
//
// The service answers with synthesized status codes, request
// introspection, and a catalog of static documents and images. An
// application is assembled from configuration sources by an [AppBuilder]
// and executed by [Run]:
//
//	err := httpbin.Run(ctx, builder,
//	    config.FromYaml(defaults),
//	    config.FromEnv("HTTPBIN"),
//	)
package httpbin
