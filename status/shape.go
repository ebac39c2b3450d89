// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package status

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Shape is the complete status, headers and body of a synthesized response.
type Shape struct {
	Status int
	Header http.Header
	Body   []byte
}

// StatusCode returns the HTTP status of the response.
func (s *Shape) StatusCode() int {
	return s.Status
}

// SetHeaders copies the response headers into h, overwriting existing values.
func (s *Shape) SetHeaders(h http.Header) {
	for name, values := range s.Header {
		h[name] = append([]string(nil), values...)
	}
}

// WriteTo implements the [io.WriterTo] interface by writing the response body.
func (s *Shape) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, bytes.NewReader(s.Body))
}

// ServeHTTP implements the [http.Handler] interface.
func (s *Shape) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.SetHeaders(w.Header())
	w.WriteHeader(s.Status)
	_, _ = s.WriteTo(w)
}

const (
	redirectLocation = "/redirect/1"
	fakeRealm        = `Basic realm="Fake realm"`

	headerMoreInfo = "X-More-Info"

	contentTypeText = "text/plain"
	contentTypeJson = "application/json"
)

// AcceptedMediaTypes are advertised in the body of a 406 Not Acceptable response.
var AcceptedMediaTypes = []string{
	"image/webp",
	"image/svg+xml",
	"image/jpeg",
	"image/png",
	"image/*",
}

var teapot = strings.Join([]string{
	"",
	"    -=[ teapot ]=-",
	"",
	"       _...._",
	"     .'  _ _ `.",
	"    | .\"` ^ `\". _,",
	"    \\_;`\"---\"`|//",
	"      |       ;/",
	"      \\_     _/",
	"        `\\\"\\\"\\\"`",
	"",
}, "\n")

var notAcceptableBody = mustMarshal(struct {
	Message string   `json:"message"`
	Accept  []string `json:"accept"`
}{
	Message: "Client did not request a supported media type.",
	Accept:  AcceptedMediaTypes,
})

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

type shapeFunc func(Code) Shape

// shapes is the single source of truth for codes with special semantics.
// Codes missing from the table get an empty body and no extra headers.
var shapes = map[Code]shapeFunc{
	http.StatusMovedPermanently:  redirect,
	http.StatusFound:             redirect,
	http.StatusSeeOther:          redirect,
	http.StatusNotModified:       redirect,
	http.StatusTemporaryRedirect: redirect,
	http.StatusUnauthorized:      challenge("WWW-Authenticate"),
	http.StatusPaymentRequired:   paymentRequired,
	http.StatusNotAcceptable:     notAcceptable,
	http.StatusProxyAuthRequired: challenge("Proxy-Authenticate"),
	http.StatusTeapot:            imATeapot,
}

// Build returns the response shape mandated for code. Build is
// deterministic and every call returns freshly allocated headers and body.
// Invalid codes produce the same shape as [InvalidShape].
func Build(code Code, _ *http.Request) Shape {
	if !code.Valid() {
		return InvalidShape()
	}
	f, ok := shapes[code]
	if !ok {
		return empty(code)
	}
	return f(code)
}

// InvalidShape is the 400 Bad Request returned for invalid specifiers.
func InvalidShape() Shape {
	return text(http.StatusBadRequest, "Invalid status code")
}

func empty(code Code) Shape {
	return Shape{
		Status: int(code),
		Header: make(http.Header),
	}
}

func text(status int, body string) Shape {
	h := make(http.Header)
	h.Set("Content-Type", contentTypeText)
	return Shape{
		Status: status,
		Header: h,
		Body:   []byte(body),
	}
}

func redirect(code Code) Shape {
	s := empty(code)
	s.Header.Set("Location", redirectLocation)
	return s
}

func challenge(header string) shapeFunc {
	return func(code Code) Shape {
		s := empty(code)
		s.Header.Set(header, fakeRealm)
		return s
	}
}

func paymentRequired(code Code) Shape {
	s := text(int(code), "Show me the money!")
	s.Header.Set(headerMoreInfo, "https://youtu.be/FFrag8ll85w")
	return s
}

func notAcceptable(code Code) Shape {
	s := empty(code)
	s.Header.Set("Content-Type", contentTypeJson)
	s.Body = bytes.Clone(notAcceptableBody)
	return s
}

func imATeapot(code Code) Shape {
	s := text(int(code), teapot)
	s.Header.Set(headerMoreInfo, "http://tools.ietf.org/html/rfc2324")
	return s
}
