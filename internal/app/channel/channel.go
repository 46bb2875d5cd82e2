// Package channel defines the audio channel set primitive consumed by the
// scheduler. A set is one or more simultaneously-active channels: one for a
// single-clip loop, N phase-locked channels for a multi-stem loop.
package channel

import "github.com/osa030/loopbox/internal/domain/loop"

// Set is an opaque group of audio channels. Implementations schedule all
// channels to begin in phase at an absolute clock time, expose per-channel
// volume, and stop as a unit. The scheduler owns its sets exclusively.
type Set interface {
	// Start schedules every referenced channel to begin playing at the given
	// clock time. A set that is already running is restarted.
	Start(refs []loop.ChannelRef, atClockTime float64) error
	// SetChannelVolume sets the gain of channel i in [0,1]. Out-of-range
	// indexes are ignored.
	SetChannelVolume(i int, gain float64)
	// Stop halts all channels immediately.
	Stop()
	// ChannelCount returns the number of scheduled channels, 0 when stopped.
	ChannelCount() int
}
