// Package clock provides the monotonic audio clock abstraction.
package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic, read-only time source in seconds. It is queried by
// the scheduler to schedule playback and by diagnostics; nothing resets it.
type Clock interface {
	Now() float64
}

// System is a Clock backed by the runtime monotonic clock, zero at creation.
type System struct {
	start time.Time
}

// NewSystem creates a System clock.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Now returns seconds elapsed since the clock was created.
func (s *System) Now() float64 {
	return time.Since(s.start).Seconds()
}

// Manual is a hand-stepped Clock for tests and offline simulation.
type Manual struct {
	mu  sync.Mutex
	now float64
}

// NewManual creates a Manual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the current manual time.
func (m *Manual) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by dt seconds. Negative steps are ignored
// to keep the clock monotonic.
func (m *Manual) Advance(dt float64) {
	if dt < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += dt
}

// Set jumps the clock to t if t is not in the past.
func (m *Manual) Set(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t > m.now {
		m.now = t
	}
}
