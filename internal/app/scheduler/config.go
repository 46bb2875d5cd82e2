package scheduler

// Config holds scheduler configuration. All durations are in seconds.
type Config struct {
	CrossfadeSec       float64 // Base crossfade duration between tracks
	LoopCrossfadeSec   float64 // Short crossfade for intra-track loop changes
	QualityAdaptive    bool    // Tier track crossfades by loop quality
	Quantize           bool    // Defer transitions to the next sync point
	MaxSyncWaitSec     float64 // Upper bound on quantized wait time
	ScheduleAheadSec   float64 // Scheduling lead time; also the sync tolerance
	MaxStems           int     // Upper bound on stems per loop (0 = unlimited)
	AutoProgress       bool    // Probabilistic loop changes near the loop tail
	AutoProgressChance float64 // Per-second trigger probability
}

// DefaultConfig returns the stock scheduler configuration.
func DefaultConfig() Config {
	return Config{
		CrossfadeSec:       2.0,
		LoopCrossfadeSec:   0.3,
		QualityAdaptive:    true,
		Quantize:           true,
		MaxSyncWaitSec:     8.0,
		ScheduleAheadSec:   0.1,
		MaxStems:           8,
		AutoProgress:       false,
		AutoProgressChance: 0.25,
	}
}
