// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package status

import (
	"net/http"
)

// Synthesizer turns a status specifier into a response shape.
type Synthesizer struct {
	sel *Selector
}

// NewSynthesizer returns a [Synthesizer] which selects codes with sel.
func NewSynthesizer(sel *Selector) *Synthesizer {
	return &Synthesizer{sel: sel}
}

// Synthesize parses spec, selects a single code and builds its shape.
//
// An invalid spec returns [InvalidShape] along with the parse error so
// callers can still write a well formed response.
func (s *Synthesizer) Synthesize(spec string, r *http.Request) (Shape, error) {
	candidates, err := Parse(spec)
	if err != nil {
		return InvalidShape(), err
	}

	code, err := s.sel.Select(candidates)
	if err != nil {
		return InvalidShape(), err
	}
	return Build(code, r), nil
}
