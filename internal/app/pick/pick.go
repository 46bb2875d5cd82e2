// Package pick provides the filter chain for loop candidate selection.
package pick

import (
	"math"

	"github.com/osa030/loopbox/internal/domain/loop"
)

// Filter is the interface for loop candidate filters.
type Filter interface {
	// Name returns the filter name (used in logs and config).
	Name() string
	// Allow reports whether the candidate may be selected while current is
	// playing. current may be nil when nothing is playing.
	Allow(current, candidate *loop.Record) bool
}

// Chain applies filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Select returns the candidates surviving every filter, in input order.
func (c *Chain) Select(current *loop.Record, candidates []loop.Record) []*loop.Record {
	var out []*loop.Record
	for i := range candidates {
		if c.allow(current, &candidates[i]) {
			out = append(out, &candidates[i])
		}
	}
	return out
}

func (c *Chain) allow(current, candidate *loop.Record) bool {
	for _, f := range c.filters {
		if !f.Allow(current, candidate) {
			return false
		}
	}
	return true
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}

// NotCurrent rejects the loop that is already playing.
type NotCurrent struct{}

func (NotCurrent) Name() string { return "not_current" }

func (NotCurrent) Allow(current, candidate *loop.Record) bool {
	return current == nil || current.ID != candidate.ID
}

// Tagged accepts only loops carrying the given tag.
type Tagged struct {
	Tag string
}

func (f Tagged) Name() string { return "tagged" }

func (f Tagged) Allow(_, candidate *loop.Record) bool {
	return candidate.HasTag(f.Tag)
}

// IntensityWindow accepts loops whose intensity lies within Radius of Center.
type IntensityWindow struct {
	Center float64
	Radius float64
}

func (f IntensityWindow) Name() string { return "intensity_window" }

func (f IntensityWindow) Allow(_, candidate *loop.Record) bool {
	return math.Abs(candidate.Intensity-f.Center) <= f.Radius
}

// QualityFloor rejects loops below a minimum quality score.
type QualityFloor struct {
	Min float64
}

func (f QualityFloor) Name() string { return "quality_floor" }

func (f QualityFloor) Allow(_, candidate *loop.Record) bool {
	return candidate.Quality >= f.Min
}
