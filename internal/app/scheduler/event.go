package scheduler

import "github.com/osa030/loopbox/internal/domain/loop"

// EventType represents a scheduler event type.
type EventType int

const (
	EventTrackChanged      EventType = iota // Current track key changed
	EventLoopChanged                        // Current loop changed
	EventMusicStopped                       // Playback stopped
	EventSyncPointReached                   // A quantized transition fired
	EventStemVolumeChanged                  // A stem multiplier changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackChanged:
		return "track_changed"
	case EventLoopChanged:
		return "loop_changed"
	case EventMusicStopped:
		return "music_stopped"
	case EventSyncPointReached:
		return "sync_point_reached"
	case EventStemVolumeChanged:
		return "stem_volume_changed"
	default:
		return "unknown"
	}
}

// Event represents a scheduler event. Only the fields relevant to the type
// are populated.
type Event struct {
	Type       EventType
	TrackKey   string       // TrackChanged, LoopChanged
	Loop       *loop.Record // LoopChanged
	ClockTime  float64      // SyncPointReached: the quantized clock time
	StemIndex  int          // StemVolumeChanged
	StemVolume float64      // StemVolumeChanged
}

// Handler receives scheduler events. Handlers are invoked in registration
// order, outside the scheduler lock, so they may call back into the
// scheduler.
type Handler func(Event)

type subscriber struct {
	id string
	fn Handler
}
