// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package status

import (
	"errors"
	"math/rand/v2"
)

// Sampler is a source of uniformly distributed values in [0, 1).
//
// A *rand.Rand from math/rand/v2 satisfies Sampler but is not safe
// for concurrent use, so it should only be shared by a single goroutine.
type Sampler interface {
	Float64() float64
}

type globalSampler struct{}

// Float64 uses the top level math/rand/v2 generator which is safe for concurrent use.
func (globalSampler) Float64() float64 {
	return rand.Float64()
}

// SelectorOption configures a [Selector].
type SelectorOption func(*Selector)

// WithSampler overrides the randomness used by the [Selector].
func WithSampler(s Sampler) SelectorOption {
	return func(sel *Selector) {
		sel.sampler = s
	}
}

// Selector picks a single [Code] from a list of weighted candidates.
type Selector struct {
	sampler Sampler
}

// NewSelector returns a [Selector] which, by default, is safe for concurrent use.
func NewSelector(opts ...SelectorOption) *Selector {
	sel := &Selector{
		sampler: globalSampler{},
	}
	for _, opt := range opts {
		opt(sel)
	}
	return sel
}

var (
	// ErrNoCandidates is returned when selecting from an empty candidate list.
	ErrNoCandidates = errors.New("status: no candidates to select from")

	// ErrNonPositiveWeights is returned when no candidate has a positive, finite weight.
	ErrNonPositiveWeights = errors.New("status: all candidate weights are non-positive")
)

// Select draws one candidate with probability proportional to its weight.
// Candidates with a non-positive or infinite weight are never selected.
// A list with a single selectable candidate never consumes randomness.
func (s *Selector) Select(cs []Candidate) (Code, error) {
	if len(cs) == 0 {
		return 0, ErrNoCandidates
	}

	var (
		total      float64
		selectable int
		last       int
	)
	for i, c := range cs {
		if !usableWeight(c.Weight) {
			continue
		}
		total += c.Weight
		selectable++
		last = i
	}
	switch selectable {
	case 0:
		return 0, ErrNonPositiveWeights
	case 1:
		return cs[last].Code, nil
	}

	u := s.sampler.Float64() * total

	var cumulative float64
	for _, c := range cs {
		if !usableWeight(c.Weight) {
			continue
		}
		cumulative += c.Weight
		if cumulative > u {
			return c.Code, nil
		}
	}

	// floating point rounding can leave u just short of total
	return cs[last].Code, nil
}
