// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package status synthesizes HTTP responses for arbitrary, optionally
// weighted, status code specifiers such as "200" or "200:0.1,418:0.9".
package status

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Code is an HTTP status code. It is not required to be registered
// with a reason phrase.
type Code int

// String implements the [fmt.Stringer] interface.
func (c Code) String() string {
	return strconv.Itoa(int(c))
}

// Valid reports whether c falls in the status code range [100, 599].
func (c Code) Valid() bool {
	return c >= 100 && c <= 599
}

// DefaultWeight is assigned to candidates without a weight and to those
// whose weight is malformed or not positive.
const DefaultWeight = 1.0

// Candidate is a single status code which may be selected from a specifier.
type Candidate struct {
	Code   Code
	Weight float64
}

// ErrInvalidStatusCode is wrapped by every [InvalidSpecError].
var ErrInvalidStatusCode = errors.New("invalid status code")

// InvalidSpecError is returned when any code token of a specifier
// is not a valid status code.
type InvalidSpecError struct {
	Spec  string
	Token string
}

// Error implements the [error] interface.
func (e InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid status specifier %q: bad code token %q", e.Spec, e.Token)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidSpecError) Unwrap() error {
	return ErrInvalidStatusCode
}

// ParseCode parses a status code token. The token must be exactly three
// ASCII digits with a value in [100, 599]. Surrounding whitespace, signs
// and other decorations are rejected.
func ParseCode(token string) (Code, error) {
	if len(token) != 3 {
		return 0, ErrInvalidStatusCode
	}

	var n int
	for i := range len(token) {
		c := token[i]
		if c < '0' || c > '9' {
			return 0, ErrInvalidStatusCode
		}
		n = n*10 + int(c-'0')
	}

	code := Code(n)
	if !code.Valid() {
		return 0, ErrInvalidStatusCode
	}
	return code, nil
}

// Parse splits spec on "," into candidates of the form "<code>" or
// "<code>:<weight>". The whole specifier is rejected with an
// [InvalidSpecError] if any code token is invalid. Malformed weights
// never fail the parse, they fall back to [DefaultWeight].
//
// A successful parse always returns at least one candidate.
func Parse(spec string) ([]Candidate, error) {
	parts := strings.Split(spec, ",")
	candidates := make([]Candidate, 0, len(parts))
	for _, part := range parts {
		codeToken, weightToken, hasWeight := strings.Cut(part, ":")

		code, err := ParseCode(codeToken)
		if err != nil {
			return nil, InvalidSpecError{
				Spec:  spec,
				Token: codeToken,
			}
		}

		weight := DefaultWeight
		if hasWeight {
			weight = parseWeight(weightToken)
		}

		candidates = append(candidates, Candidate{
			Code:   code,
			Weight: weight,
		})
	}
	return candidates, nil
}

func parseWeight(token string) float64 {
	w, err := strconv.ParseFloat(token, 64)
	if err != nil || !usableWeight(w) {
		return DefaultWeight
	}
	return w
}

func usableWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0)
}
