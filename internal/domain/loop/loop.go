// Package loop provides the Record domain entity for a single audio loop.
package loop

import (
	"github.com/cockroachdb/errors"
)

// ErrInvalid is the sentinel for loop validation failures.
// A loop failing validation is skipped, never fatal to playback.
var ErrInvalid = errors.New("invalid loop")

// ChannelRef references one audio channel (a whole clip or a single stem).
// Settings are backend-specific and decoded by the output layer.
type ChannelRef struct {
	Name     string         // Channel name (stem label, e.g. "drums")
	File     string         // Audio file path, relative to the catalog root
	Settings map[string]any // Backend-specific settings (gain_db, pan, ...)
}

// Record represents one seamlessly repeatable audio loop.
// Records are built by the authoring pipeline, validated once when entering
// the catalog, and immutable during playback.
type Record struct {
	ID          string              // Unique within its track
	DurationSec float64             // Length in seconds, from the primary channel
	TempoBPM    float64             // Tempo, falls back to the track default
	Quality     float64             // Production quality score [0,1]
	Intensity   float64             // Gameplay intensity score [0,1]
	Tags        map[string]struct{} // Free-form tags, no ordering
	SyncPoints  []float64           // Ascending, loop-relative seconds in [0,DurationSec]
	Channels    []ChannelRef        // One primary channel, or >=2 phase-locked stems
	UseStems    bool                // Selects multi-stem playback
}

// Validate checks the record against catalog constraints.
// Re-run by the scheduler before every schedule: a record that was valid at
// load time is cheap to re-check, and failures only abort the single call.
func (r *Record) Validate(maxStems int) error {
	if r.ID == "" {
		return errors.Wrap(ErrInvalid, "loop id is empty")
	}
	if r.DurationSec <= 0 {
		return errors.Wrapf(ErrInvalid, "loop %q: duration %.3f must be positive", r.ID, r.DurationSec)
	}
	if r.Quality < 0 || r.Quality > 1 {
		return errors.Wrapf(ErrInvalid, "loop %q: quality %.3f outside [0,1]", r.ID, r.Quality)
	}
	if r.Intensity < 0 || r.Intensity > 1 {
		return errors.Wrapf(ErrInvalid, "loop %q: intensity %.3f outside [0,1]", r.ID, r.Intensity)
	}
	if len(r.Channels) == 0 {
		return errors.Wrapf(ErrInvalid, "loop %q: no audio channels", r.ID)
	}
	if r.UseStems {
		if maxStems > 0 && len(r.Channels) > maxStems {
			return errors.Wrapf(ErrInvalid, "loop %q: %d stems exceeds maximum %d", r.ID, len(r.Channels), maxStems)
		}
	} else if len(r.Channels) != 1 {
		return errors.Wrapf(ErrInvalid, "loop %q: single-clip loop has %d channels", r.ID, len(r.Channels))
	}
	for i, ch := range r.Channels {
		if ch.File == "" {
			return errors.Wrapf(ErrInvalid, "loop %q: channel %d has no audio file", r.ID, i)
		}
	}
	prev := -1.0
	for _, sp := range r.SyncPoints {
		if sp < 0 || sp > r.DurationSec {
			return errors.Wrapf(ErrInvalid, "loop %q: sync point %.3f outside [0,%.3f]", r.ID, sp, r.DurationSec)
		}
		if sp <= prev {
			return errors.Wrapf(ErrInvalid, "loop %q: sync points not strictly ascending at %.3f", r.ID, sp)
		}
		prev = sp
	}
	return nil
}

// HasTag reports whether the record carries the given tag.
func (r *Record) HasTag(tag string) bool {
	_, ok := r.Tags[tag]
	return ok
}

// StemCount returns the number of audio channels.
func (r *Record) StemCount() int {
	return len(r.Channels)
}

// Primary returns the primary channel reference.
func (r *Record) Primary() ChannelRef {
	if len(r.Channels) == 0 {
		return ChannelRef{}
	}
	return r.Channels[0]
}

// BeatDuration returns the length of one beat in seconds, or 0 if the record
// has no tempo of its own.
func (r *Record) BeatDuration() float64 {
	if r.TempoBPM <= 0 {
		return 0
	}
	return 60.0 / r.TempoBPM
}

// BarDuration returns the length of one bar in seconds for the given meter.
func (r *Record) BarDuration(beatsPerBar int) float64 {
	if beatsPerBar <= 0 {
		return 0
	}
	return r.BeatDuration() * float64(beatsPerBar)
}

// SyncPointsEveryBeats generates ascending sync points spaced every n beats
// across the loop, using fallbackBPM when the record has no tempo.
// Used by the catalog loader for loops authored without explicit points.
func (r *Record) SyncPointsEveryBeats(n int, fallbackBPM float64) []float64 {
	bpm := r.TempoBPM
	if bpm <= 0 {
		bpm = fallbackBPM
	}
	if bpm <= 0 || n <= 0 || r.DurationSec <= 0 {
		return nil
	}

	step := 60.0 / bpm * float64(n)
	points := make([]float64, 0, int(r.DurationSec/step)+1)
	for t := step; t <= r.DurationSec+1e-9; t += step {
		p := t
		if p > r.DurationSec {
			p = r.DurationSec
		}
		points = append(points, p)
	}
	return points
}
