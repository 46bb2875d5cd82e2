package scheduler

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Stem multipliers live in a map keyed by stem index and default to 1.0.
// They apply to whichever channel set is live, layered under the current
// fade envelope, and survive loop changes.

// SetStemVolume sets stem i's multiplier, clamped to [0,1], and applies it
// to the live channels immediately.
func (s *Scheduler) SetStemVolume(index int, volume float64) error {
	s.mu.Lock()
	err := s.setStemLocked(index, volume)
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
	return err
}

// MuteStem silences stem i.
func (s *Scheduler) MuteStem(index int) error {
	return s.SetStemVolume(index, 0)
}

// UnmuteStem restores stem i to full volume.
func (s *Scheduler) UnmuteStem(index int) error {
	return s.SetStemVolume(index, 1)
}

// SoloStem sets stem i to full volume and every other stem to silence in one
// atomic update.
func (s *Scheduler) SoloStem(index int) error {
	s.mu.Lock()
	var err error
	if cerr := s.checkStemIndexLocked(index); cerr != nil {
		err = cerr
	} else {
		for i := 0; i < s.stemSpanLocked(); i++ {
			target := 0.0
			if i == index {
				target = 1.0
			}
			_ = s.setStemLocked(i, target)
		}
		zlog.Debug().Msgf("scheduler: soloed stem %d", index)
	}
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
	return err
}

// UnmuteAllStems resets every stem multiplier to 1.0. It does not restore
// pre-solo values; full volume for all stems is the contract.
func (s *Scheduler) UnmuteAllStems() {
	s.mu.Lock()
	for i := 0; i < s.stemSpanLocked(); i++ {
		_ = s.setStemLocked(i, 1)
	}
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
}

// StemVolume returns stem i's multiplier (1.0 when never set).
func (s *Scheduler) StemVolume(index int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stemGainLocked(index)
}

func (s *Scheduler) setStemLocked(index int, volume float64) error {
	if err := s.checkStemIndexLocked(index); err != nil {
		return err
	}
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}

	if prev, ok := s.stemGains[index]; ok && prev == volume {
		return nil
	}
	s.stemGains[index] = volume
	s.applyGainsLocked()
	s.emitLocked(Event{Type: EventStemVolumeChanged, StemIndex: index, StemVolume: volume})
	return nil
}

func (s *Scheduler) checkStemIndexLocked(index int) error {
	if index < 0 || (s.cfg.MaxStems > 0 && index >= s.cfg.MaxStems) {
		zlog.Warn().Msgf("scheduler: stem index %d outside [0,%d)", index, s.cfg.MaxStems)
		return errors.Wrapf(ErrStemIndex, "index %d, max %d", index, s.cfg.MaxStems)
	}
	return nil
}

// stemSpanLocked returns how many stem slots bulk operations touch: the
// configured maximum, widened to the live channel count if that is larger.
func (s *Scheduler) stemSpanLocked() int {
	span := s.cfg.MaxStems
	if s.curRec != nil && s.curRec.StemCount() > span {
		span = s.curRec.StemCount()
	}
	return span
}

func (s *Scheduler) stemGainLocked(index int) float64 {
	if v, ok := s.stemGains[index]; ok {
		return v
	}
	return 1
}
