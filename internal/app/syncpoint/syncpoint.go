// Package syncpoint provides pure lookups over a loop's musical sync points.
package syncpoint

import (
	"math"

	"github.com/osa030/loopbox/internal/domain/loop"
)

// None is returned when a loop has no sync points at all. It is distinct
// from the wrap case: a position at or past the last point still yields the
// first point, on the assumption that the loop restarts.
const None = -1.0

// Next returns the smallest sync point strictly greater than t. When t is at
// or past the last point it wraps to the smallest point. Returns None when
// the loop has no sync points.
func Next(rec *loop.Record, t float64) float64 {
	if len(rec.SyncPoints) == 0 {
		return None
	}
	for _, sp := range rec.SyncPoints {
		if sp > t {
			return sp
		}
	}
	return rec.SyncPoints[0]
}

// Wait returns the time from t until the next sync point, correcting for
// wrap-around by adding the loop duration. Returns None when the loop has no
// sync points.
func Wait(rec *loop.Record, t float64) float64 {
	next := Next(rec, t)
	if next == None {
		return None
	}
	wait := next - t
	if wait < 0 {
		wait += rec.DurationSec
	}
	return wait
}

// Closest returns the sync point with the smallest absolute distance to
// target, ties resolving to the lower value. Returns None when the loop has
// no sync points.
func Closest(rec *loop.Record, target float64) float64 {
	if len(rec.SyncPoints) == 0 {
		return None
	}
	best := rec.SyncPoints[0]
	bestDist := math.Abs(best - target)
	for _, sp := range rec.SyncPoints[1:] {
		// Strict < keeps the lower value on ties: points are ascending.
		if d := math.Abs(sp - target); d < bestDist {
			best, bestDist = sp, d
		}
	}
	return best
}

// InWindow returns all sync points within [start, end], inclusive, in
// ascending order.
func InWindow(rec *loop.Record, start, end float64) []float64 {
	var points []float64
	for _, sp := range rec.SyncPoints {
		if sp >= start && sp <= end {
			points = append(points, sp)
		}
	}
	return points
}
