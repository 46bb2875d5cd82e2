package scheduler

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/loopbox/internal/app/channel"
	"github.com/osa030/loopbox/internal/app/fade"
	"github.com/osa030/loopbox/internal/app/pick"
	"github.com/osa030/loopbox/internal/app/syncpoint"
	"github.com/osa030/loopbox/internal/domain/catalog"
	"github.com/osa030/loopbox/internal/domain/loop"
	"github.com/osa030/loopbox/internal/infra/clock"
)

// Errors
var (
	ErrTrackNotFound      = errors.New("track not found")
	ErrStemIndex          = errors.New("stem index out of range")
	ErrTransitionInFlight = errors.New("crossfade already in progress")
	ErrChannelStart       = errors.New("channel set failed to start")
)

// pendingTransition is the single quantized transition slot. The newest
// request always wins; there is never a queue.
type pendingTransition struct {
	track     *catalog.Track
	rec       *loop.Record
	at        float64 // Absolute clock time the new channels begin
	syncPoint float64 // Source-loop-relative sync point quantized to
}

// crossfadeState is the in-flight crossfade, advanced once per tick.
type crossfadeState struct {
	elapsed  float64
	duration float64
	g0       float64 // Outgoing gain at fade start
	toTrack  *catalog.Track
	toRec    *loop.Record
	startAt  float64 // Clock time the incoming set was scheduled for
}

// fadeOutState is an in-flight linear fade to silence.
type fadeOutState struct {
	elapsed  float64
	duration float64
	from     float64
}

// Scheduler decides when and how to transition between loops. It owns two
// channel sets for double buffering, consults the catalog and sync point
// lookups, and advances all fades cooperatively from Tick. No call blocks;
// waiting is state retained across ticks.
type Scheduler struct {
	mu sync.RWMutex

	cfg    Config
	policy fade.DurationPolicy

	cat *catalog.Catalog
	clk clock.Clock

	// Double-buffered channel sets. Exactly one is audible at steady state;
	// ownership swaps after each completed crossfade.
	active   channel.Set
	inactive channel.Set

	state     State
	curTrack  *catalog.Track
	curRec    *loop.Record
	loopStart float64 // Clock time the current loop began

	pending *pendingTransition
	xfade   *crossfadeState
	fadeOut *fadeOutState

	// Last envelope gains applied to the active (outgoing) and inactive
	// (incoming) sets. Stem multipliers are layered on top of these.
	envOut float64
	envIn  float64

	stemGains map[int]float64

	autoPick *pick.Chain
	randFn   func() float64

	subs   []subscriber
	queued []Event
}

// New creates a stopped scheduler owning the two given channel sets.
func New(cat *catalog.Catalog, clk clock.Clock, a, b channel.Set, cfg Config) *Scheduler {
	return &Scheduler{
		cfg: cfg,
		policy: fade.DurationPolicy{
			Base:            cfg.CrossfadeSec,
			Loop:            cfg.LoopCrossfadeSec,
			QualityAdaptive: cfg.QualityAdaptive,
			Tiers:           fade.DefaultPolicy().Tiers,
		},
		cat:       cat,
		clk:       clk,
		active:    a,
		inactive:  b,
		state:     StateStopped,
		envOut:    1,
		stemGains: make(map[int]float64),
		autoPick:  pick.NewChain(pick.NotCurrent{}),
		randFn:    rand.Float64,
	}
}

// Subscribe registers an event handler and returns its subscription ID.
func (s *Scheduler) Subscribe(h Handler) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.subs = append(s.subs, subscriber{id: id, fn: h})
	return id
}

// Unsubscribe removes an event handler.
func (s *Scheduler) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// PlayTrack immediately starts the first loop of the given track.
func (s *Scheduler) PlayTrack(trackKey string) error {
	s.mu.Lock()
	err := s.playIndexLocked(trackKey, 0)
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
	return err
}

// PlayLoopByIndex immediately starts the loop at the given track index.
func (s *Scheduler) PlayLoopByIndex(trackKey string, index int) error {
	s.mu.Lock()
	err := s.playIndexLocked(trackKey, index)
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
	return err
}

// TransitionToLoop moves to the given loop of the given track, quantized to
// the current loop's next sync point when quantization is enabled.
func (s *Scheduler) TransitionToLoop(trackKey string, rec *loop.Record) error {
	s.mu.Lock()
	err := s.transitionResolvedLocked(trackKey, rec)
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
	return err
}

// TransitionToLoopByIndex is TransitionToLoop addressed by track index.
func (s *Scheduler) TransitionToLoopByIndex(trackKey string, index int) error {
	s.mu.Lock()
	var err error
	if track, terr := s.resolveTrackLocked(trackKey); terr != nil {
		err = terr
	} else if rec, lerr := track.LoopAt(index); lerr != nil {
		zlog.Warn().Msgf("scheduler: %v", lerr)
		err = lerr
	} else {
		err = s.transitionLocked(track, rec)
	}
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
	return err
}

// TransitionToTrack moves to the track's loop closest in intensity to the
// current loop, or its first loop when nothing is playing.
func (s *Scheduler) TransitionToTrack(trackKey string) error {
	s.mu.Lock()
	var err error
	if track, terr := s.resolveTrackLocked(trackKey); terr != nil {
		err = terr
	} else {
		var rec *loop.Record
		if s.curRec != nil {
			rec = track.ClosestIntensity(s.curRec.Intensity)
		} else if len(track.Loops) > 0 {
			rec = &track.Loops[0]
		}
		if rec == nil {
			err = errors.Wrapf(catalog.ErrLoopNotFound, "track %q has no loops", trackKey)
		} else {
			err = s.transitionLocked(track, rec)
		}
	}
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
	return err
}

// TransitionToIntensity moves to the track's loop whose intensity is closest
// to target (clamped to [0,1]).
func (s *Scheduler) TransitionToIntensity(trackKey string, target float64) error {
	target = math.Max(0, math.Min(1, target))

	s.mu.Lock()
	var err error
	if track, terr := s.resolveTrackLocked(trackKey); terr != nil {
		err = terr
	} else if rec := track.ClosestIntensity(target); rec == nil {
		err = errors.Wrapf(catalog.ErrLoopNotFound, "track %q has no loops", trackKey)
	} else {
		err = s.transitionLocked(track, rec)
	}
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
	return err
}

// StopMusic stops both channel sets and clears all pending state. It is the
// only cancellation primitive: pending transition, in-flight fades, and
// channel playback are cleared together under one lock.
func (s *Scheduler) StopMusic() {
	s.mu.Lock()
	s.stopLocked()
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
}

// FadeOut ramps the current gain linearly to silence over durationSec, then
// stops. It cancels any pending quantized transition; a crossfade already in
// flight is abandoned and its incoming set silenced.
func (s *Scheduler) FadeOut(durationSec float64) {
	s.mu.Lock()
	if s.state != StateStopped {
		if durationSec <= 0 {
			s.stopLocked()
		} else {
			if s.xfade != nil {
				s.inactive.Stop()
				s.xfade = nil
			}
			s.pending = nil
			s.fadeOut = &fadeOutState{duration: durationSec, from: s.envOut}
			s.state = StatePlaying
			zlog.Debug().Msgf("scheduler: fading out over %.2fs from gain %.3f", durationSec, s.envOut)
		}
	}
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
}

// Tick advances the scheduler by dt seconds of wall time. The host drives it
// at a fixed interval independent of frame rate. All waiting is polled here:
// pending transitions fire when the hardware clock reaches their scheduled
// time, and fades advance by the real tick delta.
func (s *Scheduler) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}

	s.mu.Lock()
	switch s.state {
	case StateWaitingForSync:
		s.pollPendingLocked()
	case StateTransitioning:
		s.advanceCrossfadeLocked(dt)
	case StatePlaying:
		if s.fadeOut != nil {
			s.advanceFadeOutLocked(dt)
		} else {
			s.maybeAutoProgressLocked(dt)
		}
	}
	events, subs := s.drainLocked()
	s.mu.Unlock()

	dispatch(events, subs)
}

// --- queries ---

// CurrentTrackKey returns the playing track's key, or "" when stopped.
func (s *Scheduler) CurrentTrackKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.curTrack == nil {
		return ""
	}
	return s.curTrack.Key
}

// CurrentLoop returns the playing loop, or nil when stopped.
func (s *Scheduler) CurrentLoop() *loop.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.curRec
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsPlaying reports whether any music is audible or scheduled.
func (s *Scheduler) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state != StateStopped
}

// IsTransitioning reports whether a crossfade is running.
func (s *Scheduler) IsTransitioning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateTransitioning
}

// HasScheduledTransition reports whether a quantized transition is pending.
func (s *Scheduler) HasScheduledTransition() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending != nil
}

// CurrentLoopPosition returns seconds since the current loop started, modulo
// its duration. 0 when stopped or before the scheduled start.
func (s *Scheduler) CurrentLoopPosition() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positionLocked()
}

// TimeUntilNextSync returns the wait until the current loop's next sync
// point, or syncpoint.None when there is none.
func (s *Scheduler) TimeUntilNextSync() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.curRec == nil {
		return syncpoint.None
	}
	return syncpoint.Wait(s.curRec, s.positionLocked())
}

// --- configuration setters ---

// SetCrossfadeDuration sets the base track crossfade duration.
func (s *Scheduler) SetCrossfadeDuration(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.CrossfadeSec = sec
	s.policy.Base = sec
}

// SetLoopCrossfadeDuration sets the intra-track crossfade duration.
func (s *Scheduler) SetLoopCrossfadeDuration(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.LoopCrossfadeSec = sec
	s.policy.Loop = sec
}

// SetQualityAdaptive toggles quality-tiered crossfade durations.
func (s *Scheduler) SetQualityAdaptive(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.QualityAdaptive = enabled
	s.policy.QualityAdaptive = enabled
}

// SetQuantization toggles sync point quantization of transitions.
func (s *Scheduler) SetQuantization(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Quantize = enabled
}

// SetMaxSyncWait caps how long a quantized transition may wait.
func (s *Scheduler) SetMaxSyncWait(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.MaxSyncWaitSec = sec
}

// SetScheduleAhead sets the scheduling lead time buffer.
func (s *Scheduler) SetScheduleAhead(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.ScheduleAheadSec = sec
}

// SetMaxStems bounds the stem count accepted per loop.
func (s *Scheduler) SetMaxStems(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.MaxStems = n
}

// SetAutoProgress configures probabilistic loop progression near loop tails.
func (s *Scheduler) SetAutoProgress(enabled bool, chancePerSec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.AutoProgress = enabled
	s.cfg.AutoProgressChance = chancePerSec
}

// --- internals; all require the write lock ---

func (s *Scheduler) resolveTrackLocked(key string) (*catalog.Track, error) {
	track, ok := s.cat.GetTrack(key)
	if !ok {
		zlog.Warn().Msgf("scheduler: unknown track %q", key)
		return nil, errors.Wrapf(ErrTrackNotFound, "track %q", key)
	}
	return track, nil
}

func (s *Scheduler) playIndexLocked(trackKey string, index int) error {
	track, err := s.resolveTrackLocked(trackKey)
	if err != nil {
		return err
	}
	rec, err := track.LoopAt(index)
	if err != nil {
		zlog.Warn().Msgf("scheduler: %v", err)
		return err
	}
	return s.startLoopLocked(track, rec)
}

// startLoopLocked performs an immediate start: both sets stopped, the active
// set scheduled a lead-time ahead so the output device never starves.
func (s *Scheduler) startLoopLocked(track *catalog.Track, rec *loop.Record) error {
	if err := rec.Validate(s.cfg.MaxStems); err != nil {
		zlog.Warn().Msgf("scheduler: rejecting loop: %v", err)
		return err
	}

	var prevKey string
	if s.curTrack != nil {
		prevKey = s.curTrack.Key
	}

	s.active.Stop()
	s.inactive.Stop()

	start := s.clk.Now() + s.cfg.ScheduleAheadSec
	if err := s.active.Start(rec.Channels, start); err != nil {
		zlog.Error().Msgf("scheduler: start failed for loop %q: %v", rec.ID, err)
		return errors.Wrapf(ErrChannelStart, "loop %q: %v", rec.ID, err)
	}

	s.curTrack = track
	s.curRec = rec
	s.loopStart = start
	s.pending = nil
	s.xfade = nil
	s.fadeOut = nil
	s.envOut, s.envIn = 1, 0
	s.state = StatePlaying
	s.applyGainsLocked()

	zlog.Info().Msgf("scheduler: playing track=%s loop=%s at=%.3f stems=%d",
		track.Key, rec.ID, start, rec.StemCount())

	s.emitLocked(Event{Type: EventLoopChanged, TrackKey: track.Key, Loop: rec})
	if prevKey != track.Key {
		s.emitLocked(Event{Type: EventTrackChanged, TrackKey: track.Key})
	}
	return nil
}

func (s *Scheduler) transitionResolvedLocked(trackKey string, rec *loop.Record) error {
	track, err := s.resolveTrackLocked(trackKey)
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.Wrapf(catalog.ErrLoopNotFound, "track %q: nil loop", trackKey)
	}
	// Resolve to the catalog's own record so membership is guaranteed.
	canonical, err := track.LoopByID(rec.ID)
	if err != nil {
		zlog.Warn().Msgf("scheduler: %v", err)
		return err
	}
	return s.transitionLocked(track, canonical)
}

func (s *Scheduler) transitionLocked(track *catalog.Track, rec *loop.Record) error {
	// Nothing playing: behave like an immediate play.
	if s.state == StateStopped || s.curRec == nil {
		return s.startLoopLocked(track, rec)
	}

	// Already there: no-op.
	if s.curTrack != nil && s.curTrack.Key == track.Key && s.curRec.ID == rec.ID {
		return nil
	}

	// Crossfades are single-flight; a request during one is rejected rather
	// than queued or restarted.
	if s.state == StateTransitioning {
		zlog.Debug().Msgf("scheduler: rejecting transition to %s/%s: crossfade in flight",
			track.Key, rec.ID)
		return errors.Wrapf(ErrTransitionInFlight, "to %s/%s", track.Key, rec.ID)
	}

	if err := rec.Validate(s.cfg.MaxStems); err != nil {
		zlog.Warn().Msgf("scheduler: rejecting transition: %v", err)
		return err
	}

	if s.cfg.Quantize && len(s.curRec.SyncPoints) > 0 {
		pos := s.positionLocked()
		wait := syncpoint.Wait(s.curRec, pos)
		sp := syncpoint.Next(s.curRec, pos)
		if wait > s.cfg.MaxSyncWaitSec {
			zlog.Debug().Msgf("scheduler: clamping sync wait %.3f to %.3f", wait, s.cfg.MaxSyncWaitSec)
			wait = s.cfg.MaxSyncWaitSec
		}

		// Single pending slot: a newer request replaces an older one.
		s.pending = &pendingTransition{
			track:     track,
			rec:       rec,
			at:        s.clk.Now() + wait,
			syncPoint: sp,
		}
		s.state = StateWaitingForSync

		zlog.Debug().Msgf("scheduler: quantized transition to %s/%s in %.3fs (sync point %.3f)",
			track.Key, rec.ID, wait, sp)
		return nil
	}

	// No sync points (or quantization off): fall back to an immediate fade.
	if s.cfg.Quantize {
		zlog.Debug().Msgf("scheduler: loop %q has no sync points, crossfading immediately", s.curRec.ID)
	}
	return s.beginCrossfadeLocked(track, rec, s.clk.Now()+s.cfg.ScheduleAheadSec)
}

// pollPendingLocked fires the pending transition once the clock is within
// the lead-time tolerance of its scheduled moment. The tolerance equals the
// scheduling lead buffer, compensating tick-to-tick jitter.
func (s *Scheduler) pollPendingLocked() {
	p := s.pending
	if p == nil {
		s.state = StatePlaying
		return
	}
	if s.clk.Now() < p.at-s.cfg.ScheduleAheadSec {
		return
	}

	s.pending = nil
	s.emitLocked(Event{Type: EventSyncPointReached, ClockTime: p.at})

	if err := s.beginCrossfadeLocked(p.track, p.rec, p.at); err != nil {
		s.state = StatePlaying
	}
}

func (s *Scheduler) beginCrossfadeLocked(track *catalog.Track, rec *loop.Record, startAt float64) error {
	if err := s.inactive.Start(rec.Channels, startAt); err != nil {
		zlog.Error().Msgf("scheduler: start failed for loop %q: %v", rec.ID, err)
		return errors.Wrapf(ErrChannelStart, "loop %q: %v", rec.ID, err)
	}
	// Incoming channels begin silent; the fade raises them.
	for i := range rec.Channels {
		s.inactive.SetChannelVolume(i, 0)
	}

	sameTrack := s.curTrack != nil && s.curTrack.Key == track.Key
	duration := s.policy.Duration(sameTrack, s.curRec.Quality, rec.Quality)

	s.xfade = &crossfadeState{
		duration: duration,
		g0:       s.envOut, // Less than 1 when interrupting a fade-out
		toTrack:  track,
		toRec:    rec,
		startAt:  startAt,
	}
	// Any quantized transition still waiting is superseded by this fade.
	s.pending = nil
	s.fadeOut = nil
	s.envIn = 0
	s.state = StateTransitioning

	zlog.Debug().Msgf("scheduler: crossfading to %s/%s over %.3fs (g0=%.3f)",
		track.Key, rec.ID, duration, s.xfade.g0)
	return nil
}

func (s *Scheduler) advanceCrossfadeLocked(dt float64) {
	xf := s.xfade
	if xf == nil {
		s.state = StatePlaying
		return
	}

	xf.elapsed += dt
	progress := 1.0
	if xf.duration > 0 {
		progress = math.Min(xf.elapsed/xf.duration, 1)
	}

	eased := fade.Smoothstep(progress)
	s.envOut, s.envIn = fade.Gains(eased, xf.g0)
	s.applyGainsLocked()

	if progress < 1 {
		return
	}

	// Finalize exactly: outgoing silent and stopped, incoming at its target
	// stem volumes, then swap ownership of the sets.
	for i := range s.curRec.Channels {
		s.active.SetChannelVolume(i, 0)
	}
	s.active.Stop()
	for i := range xf.toRec.Channels {
		s.inactive.SetChannelVolume(i, s.stemGainLocked(i))
	}
	s.active, s.inactive = s.inactive, s.active

	prevKey := s.curTrack.Key
	s.curTrack = xf.toTrack
	s.curRec = xf.toRec
	s.loopStart = xf.startAt
	s.xfade = nil
	s.envOut, s.envIn = 1, 0
	s.state = StatePlaying

	zlog.Debug().Msgf("scheduler: crossfade complete, now track=%s loop=%s",
		s.curTrack.Key, s.curRec.ID)

	s.emitLocked(Event{Type: EventLoopChanged, TrackKey: s.curTrack.Key, Loop: s.curRec})
	if prevKey != s.curTrack.Key {
		s.emitLocked(Event{Type: EventTrackChanged, TrackKey: s.curTrack.Key})
	}
}

func (s *Scheduler) advanceFadeOutLocked(dt float64) {
	fo := s.fadeOut
	fo.elapsed += dt
	progress := 1.0
	if fo.duration > 0 {
		progress = math.Min(fo.elapsed/fo.duration, 1)
	}

	s.envOut = fo.from * (1 - progress)
	s.applyGainsLocked()

	if progress >= 1 {
		s.stopLocked()
	}
}

// maybeAutoProgressLocked probabilistically moves to another loop of the
// current track, only near the loop tail so the quantized fade lands on the
// loop boundary region.
func (s *Scheduler) maybeAutoProgressLocked(dt float64) {
	if !s.cfg.AutoProgress || s.curRec == nil || s.curTrack == nil {
		return
	}
	remaining := s.curRec.DurationSec - s.positionLocked()
	if remaining > s.policy.Loop {
		return
	}
	if s.randFn() >= s.cfg.AutoProgressChance*dt {
		return
	}

	cands := s.autoPick.Select(s.curRec, s.curTrack.Loops)
	if len(cands) == 0 {
		return
	}
	next := cands[int(s.randFn()*float64(len(cands)))%len(cands)]

	zlog.Debug().Msgf("scheduler: auto-progressing from %s to %s", s.curRec.ID, next.ID)
	if err := s.transitionLocked(s.curTrack, next); err != nil {
		zlog.Debug().Msgf("scheduler: auto-progress skipped: %v", err)
	}
}

func (s *Scheduler) stopLocked() {
	wasPlaying := s.state != StateStopped

	s.active.Stop()
	s.inactive.Stop()
	s.pending = nil
	s.xfade = nil
	s.fadeOut = nil
	s.curTrack = nil
	s.curRec = nil
	s.loopStart = 0
	s.envOut, s.envIn = 1, 0
	s.state = StateStopped

	if wasPlaying {
		zlog.Info().Msg("scheduler: stopped")
		s.emitLocked(Event{Type: EventMusicStopped})
	}
}

func (s *Scheduler) positionLocked() float64 {
	if s.curRec == nil || s.curRec.DurationSec <= 0 {
		return 0
	}
	pos := s.clk.Now() - s.loopStart
	if pos < 0 {
		return 0
	}
	return math.Mod(pos, s.curRec.DurationSec)
}

// applyGainsLocked writes envelope x stem-multiplier gains to every channel
// of both sets.
func (s *Scheduler) applyGainsLocked() {
	if s.curRec != nil {
		for i := range s.curRec.Channels {
			s.active.SetChannelVolume(i, s.envOut*s.stemGainLocked(i))
		}
	}
	if s.xfade != nil {
		for i := range s.xfade.toRec.Channels {
			s.inactive.SetChannelVolume(i, s.envIn*s.stemGainLocked(i))
		}
	}
}

func (s *Scheduler) emitLocked(e Event) {
	s.queued = append(s.queued, e)
}

// drainLocked hands back queued events with a snapshot of the subscriber
// list so dispatch can run outside the lock.
func (s *Scheduler) drainLocked() ([]Event, []subscriber) {
	if len(s.queued) == 0 {
		return nil, nil
	}
	events := s.queued
	s.queued = nil
	subs := append([]subscriber(nil), s.subs...)
	return events, subs
}

func dispatch(events []Event, subs []subscriber) {
	for _, e := range events {
		for _, sub := range subs {
			sub.fn(e)
		}
	}
}
