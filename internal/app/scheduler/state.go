// Package scheduler provides the playback scheduler: the state machine that
// quantizes loop transitions against musical sync points and drives
// glitch-free crossfades over double-buffered channel sets.
package scheduler

// State represents the scheduler state.
type State int

const (
	StateStopped        State = iota // Nothing playing
	StatePlaying                     // A loop is playing at steady gain
	StateWaitingForSync              // A quantized transition is pending
	StateTransitioning               // A crossfade is running
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateWaitingForSync:
		return "waiting_for_sync"
	case StateTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}
