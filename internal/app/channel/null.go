package channel

import (
	"sync"

	"github.com/osa030/loopbox/internal/domain/loop"
)

// Null is a silent Set that records what it was told to do. It backs the
// scheduler tests and doubles as a no-audio backend.
type Null struct {
	mu        sync.Mutex
	refs      []loop.ChannelRef
	gains     []float64
	startedAt float64
	running   bool
	starts    int
	stops     int
}

// NewNull creates a stopped Null set.
func NewNull() *Null {
	return &Null{}
}

// Start implements Set.
func (n *Null) Start(refs []loop.ChannelRef, atClockTime float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.refs = append([]loop.ChannelRef(nil), refs...)
	n.gains = make([]float64, len(refs))
	for i := range n.gains {
		n.gains[i] = 1
	}
	n.startedAt = atClockTime
	n.running = true
	n.starts++
	return nil
}

// SetChannelVolume implements Set.
func (n *Null) SetChannelVolume(i int, gain float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if i < 0 || i >= len(n.gains) {
		return
	}
	n.gains[i] = gain
}

// Stop implements Set.
func (n *Null) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.running = false
	n.refs = nil
	n.gains = nil
	n.stops++
}

// ChannelCount implements Set.
func (n *Null) ChannelCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.refs)
}

// Running reports whether the set has been started and not yet stopped.
func (n *Null) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

// StartedAt returns the clock time of the last Start.
func (n *Null) StartedAt() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.startedAt
}

// Gains returns a copy of the per-channel gains.
func (n *Null) Gains() []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]float64(nil), n.gains...)
}

// Refs returns a copy of the scheduled channel references.
func (n *Null) Refs() []loop.ChannelRef {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]loop.ChannelRef(nil), n.refs...)
}

// Starts returns how many times the set has been started.
func (n *Null) Starts() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.starts
}

// Stops returns how many times the set has been stopped.
func (n *Null) Stops() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stops
}
