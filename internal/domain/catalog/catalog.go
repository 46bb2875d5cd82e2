// Package catalog provides the Track entity and the read-only track catalog.
package catalog

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/osa030/loopbox/internal/domain/loop"
)

// Errors
var (
	ErrTrackNotFound = errors.New("track not found")
	ErrLoopNotFound  = errors.New("loop not found")
	ErrDuplicateKey  = errors.New("duplicate track key")
)

// Track is a named, ordered collection of loops.
type Track struct {
	Key             string        // Unique within the catalog
	DefaultTempoBPM float64       // Fallback tempo for loops without their own
	Loops           []loop.Record // Non-empty for a playable track
}

// LoopAt returns the loop at the given index.
func (t *Track) LoopAt(idx int) (*loop.Record, error) {
	if idx < 0 || idx >= len(t.Loops) {
		return nil, errors.Wrapf(ErrLoopNotFound, "track %q: index %d out of range [0,%d)", t.Key, idx, len(t.Loops))
	}
	return &t.Loops[idx], nil
}

// LoopByID returns the loop with the given id.
func (t *Track) LoopByID(id string) (*loop.Record, error) {
	for i := range t.Loops {
		if t.Loops[i].ID == id {
			return &t.Loops[i], nil
		}
	}
	return nil, errors.Wrapf(ErrLoopNotFound, "track %q: no loop %q", t.Key, id)
}

// ClosestIntensity returns the loop whose intensity is closest to target.
// Ties resolve to the earlier loop in track order.
func (t *Track) ClosestIntensity(target float64) *loop.Record {
	if len(t.Loops) == 0 {
		return nil
	}
	best := 0
	bestDist := math.Abs(t.Loops[0].Intensity - target)
	for i := 1; i < len(t.Loops); i++ {
		if d := math.Abs(t.Loops[i].Intensity - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return &t.Loops[best]
}

// TotalDuration returns the summed duration of all loops in seconds.
func (t *Track) TotalDuration() float64 {
	var total float64
	for i := range t.Loops {
		total += t.Loops[i].DurationSec
	}
	return total
}

// Catalog is the read-only collection of tracks. It is built once at startup
// by the loader and never mutated by the scheduler.
type Catalog struct {
	tracks map[string]*Track
	order  []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		tracks: make(map[string]*Track),
	}
}

// Add inserts a track, rejecting duplicate keys.
func (c *Catalog) Add(t *Track) error {
	if t.Key == "" {
		return errors.Wrap(ErrDuplicateKey, "empty track key")
	}
	if _, ok := c.tracks[t.Key]; ok {
		return errors.Wrapf(ErrDuplicateKey, "track %q already in catalog", t.Key)
	}
	c.tracks[t.Key] = t
	c.order = append(c.order, t.Key)
	return nil
}

// GetTrack looks up a track by key.
func (c *Catalog) GetTrack(key string) (*Track, bool) {
	t, ok := c.tracks[key]
	return t, ok
}

// Keys returns the track keys in insertion order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.tracks)
}
