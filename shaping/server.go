// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaping

import "net/http"

// ServerHeader identifies the server on every response as "<product>/<version>".
func ServerHeader(product, version string) Stage {
	value := product + "/" + version
	return func(_ *http.Request, resp *Response) {
		resp.Header.Set("Server", value)
	}
}
