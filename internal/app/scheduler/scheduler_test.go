package scheduler

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/loopbox/internal/app/channel"
	"github.com/osa030/loopbox/internal/domain/catalog"
	"github.com/osa030/loopbox/internal/domain/loop"
	"github.com/osa030/loopbox/internal/infra/clock"
)

func testConfig() Config {
	return Config{
		CrossfadeSec:     2.0,
		LoopCrossfadeSec: 0.3,
		QualityAdaptive:  false,
		Quantize:         true,
		MaxSyncWaitSec:   8.0,
		ScheduleAheadSec: 0.1,
		MaxStems:         4,
	}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat := catalog.New()
	require.NoError(t, cat.Add(&catalog.Track{
		Key:             "alpha",
		DefaultTempoBPM: 120,
		Loops: []loop.Record{
			{ID: "a1", DurationSec: 8, Quality: 0.9, Intensity: 0.2,
				SyncPoints: []float64{2, 4, 6, 8},
				Channels:   []loop.ChannelRef{{Name: "main", File: "a1.raw"}}},
			{ID: "a2", DurationSec: 8, Quality: 0.9, Intensity: 0.8,
				SyncPoints: []float64{2, 4, 6, 8},
				Channels:   []loop.ChannelRef{{Name: "main", File: "a2.raw"}}},
		},
	}))
	require.NoError(t, cat.Add(&catalog.Track{
		Key: "beta",
		Loops: []loop.Record{
			{ID: "b1", DurationSec: 4, Quality: 0.5, Intensity: 0.5,
				Channels: []loop.ChannelRef{{Name: "main", File: "b1.raw"}}},
		},
	}))
	require.NoError(t, cat.Add(&catalog.Track{
		Key: "long",
		Loops: []loop.Record{
			{ID: "l1", DurationSec: 16, Quality: 0.5, Intensity: 0.5,
				SyncPoints: []float64{16},
				Channels:   []loop.ChannelRef{{Name: "main", File: "l1.raw"}}},
			{ID: "l2", DurationSec: 16, Quality: 0.5, Intensity: 0.9,
				SyncPoints: []float64{16},
				Channels:   []loop.ChannelRef{{Name: "main", File: "l2.raw"}}},
		},
	}))
	require.NoError(t, cat.Add(&catalog.Track{
		Key: "stems",
		Loops: []loop.Record{
			{ID: "s1", DurationSec: 8, Quality: 0.8, Intensity: 0.5, UseStems: true,
				SyncPoints: []float64{4, 8},
				Channels: []loop.ChannelRef{
					{Name: "drums", File: "drums.raw"},
					{Name: "bass", File: "bass.raw"},
					{Name: "lead", File: "lead.raw"},
					{Name: "pads", File: "pads.raw"},
				}},
		},
	}))
	require.NoError(t, cat.Add(&catalog.Track{
		Key: "broken",
		Loops: []loop.Record{
			{ID: "bad", DurationSec: 0,
				Channels: []loop.ChannelRef{{Name: "main", File: "bad.raw"}}},
		},
	}))
	return cat
}

type fixture struct {
	s    *Scheduler
	clk  *clock.Manual
	a, b *channel.Null
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewManual()
	a, b := channel.NewNull(), channel.NewNull()
	return &fixture{
		s:   New(testCatalog(t), clk, a, b, testConfig()),
		clk: clk,
		a:   a,
		b:   b,
	}
}

func TestScheduler_PlayTrack(t *testing.T) {
	f := newFixture(t)

	var events []Event
	f.s.Subscribe(func(e Event) { events = append(events, e) })

	require.NoError(t, f.s.PlayTrack("alpha"))

	assert.Equal(t, StatePlaying, f.s.State())
	assert.Equal(t, "alpha", f.s.CurrentTrackKey())
	assert.Equal(t, "a1", f.s.CurrentLoop().ID)
	assert.True(t, f.s.IsPlaying())

	// Scheduled a lead-time ahead of the clock.
	assert.True(t, f.a.Running())
	assert.InDelta(t, 0.1, f.a.StartedAt(), 1e-9)

	require.Len(t, events, 2)
	assert.Equal(t, EventLoopChanged, events[0].Type)
	assert.Equal(t, "a1", events[0].Loop.ID)
	assert.Equal(t, EventTrackChanged, events[1].Type)
}

func TestScheduler_PlayTrack_Unknown(t *testing.T) {
	f := newFixture(t)

	err := f.s.PlayTrack("nope")
	assert.True(t, errors.Is(err, ErrTrackNotFound))
	assert.Equal(t, StateStopped, f.s.State())
	assert.False(t, f.a.Running())
}

func TestScheduler_PlayLoopByIndex(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.s.PlayLoopByIndex("alpha", 1))
	assert.Equal(t, "a2", f.s.CurrentLoop().ID)

	err := f.s.PlayLoopByIndex("alpha", 5)
	assert.True(t, errors.Is(err, catalog.ErrLoopNotFound))
	assert.Equal(t, "a2", f.s.CurrentLoop().ID, "failed call leaves state unchanged")
}

func TestScheduler_RejectsInvalidLoop(t *testing.T) {
	f := newFixture(t)

	err := f.s.PlayTrack("broken")
	assert.True(t, errors.Is(err, loop.ErrInvalid))
	assert.Equal(t, StateStopped, f.s.State())
}

func TestScheduler_TransitionWhileStoppedPlaysImmediately(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.s.TransitionToTrack("alpha"))
	assert.Equal(t, StatePlaying, f.s.State())
	assert.Equal(t, "a1", f.s.CurrentLoop().ID)
}

func TestScheduler_TransitionSameLoopIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("alpha"))

	var events []Event
	f.s.Subscribe(func(e Event) { events = append(events, e) })

	require.NoError(t, f.s.TransitionToLoopByIndex("alpha", 0))
	assert.Equal(t, StatePlaying, f.s.State())
	assert.False(t, f.s.HasScheduledTransition())
	assert.Empty(t, events)
}

func TestScheduler_QuantizedTransition(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("alpha")) // loopStart = 0.1

	var events []Event
	f.s.Subscribe(func(e Event) { events = append(events, e) })

	// Position 5.5 within [2,4,6,8]: next sync at 6, wait 0.5.
	f.clk.Set(5.6)
	require.NoError(t, f.s.TransitionToLoopByIndex("alpha", 1))

	assert.Equal(t, StateWaitingForSync, f.s.State())
	assert.True(t, f.s.HasScheduledTransition())
	assert.InDelta(t, 0.5, f.s.TimeUntilNextSync(), 1e-9)

	// Before the tolerance window: nothing fires.
	f.clk.Set(5.9)
	f.s.Tick(0.016)
	assert.Equal(t, StateWaitingForSync, f.s.State())

	// Inside the tolerance window (at - lead = 6.0): the crossfade begins
	// with the incoming set scheduled at exactly the quantized time.
	f.clk.Set(6.0)
	f.s.Tick(0.016)

	assert.Equal(t, StateTransitioning, f.s.State())
	assert.False(t, f.s.HasScheduledTransition())
	assert.True(t, f.b.Running())
	assert.InDelta(t, 6.1, f.b.StartedAt(), 1e-9)

	require.NotEmpty(t, events)
	assert.Equal(t, EventSyncPointReached, events[0].Type)
	assert.InDelta(t, 6.1, events[0].ClockTime, 1e-9)
}

func TestScheduler_QuantizedWaitClamped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("long")) // loopStart = 0.1

	var events []Event
	f.s.Subscribe(func(e Event) { events = append(events, e) })

	// Position 6.8, only sync point at 16: raw wait 9.2, clamped to 8.
	f.clk.Set(6.9)
	require.NoError(t, f.s.TransitionToLoopByIndex("long", 1))
	assert.Equal(t, StateWaitingForSync, f.s.State())

	f.clk.Set(14.8) // at 6.9+8=14.9, tolerance 0.1
	f.s.Tick(0.016)

	assert.Equal(t, StateTransitioning, f.s.State())
	require.NotEmpty(t, events)
	assert.Equal(t, EventSyncPointReached, events[0].Type)
	assert.InDelta(t, 14.9, events[0].ClockTime, 1e-9)
}

func TestScheduler_PendingIsLastWriterWins(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("alpha"))

	f.clk.Set(1.0)
	require.NoError(t, f.s.TransitionToLoopByIndex("alpha", 1))
	require.NoError(t, f.s.TransitionToTrack("beta")) // replaces the pending one

	assert.Equal(t, StateWaitingForSync, f.s.State())

	// Fire and finish the crossfade: the newest target wins.
	f.clk.Set(2.0)
	f.s.Tick(0.016)
	assert.Equal(t, StateTransitioning, f.s.State())
	for i := 0; i < 200; i++ {
		f.s.Tick(0.1)
	}
	assert.Equal(t, "beta", f.s.CurrentTrackKey())
	assert.Equal(t, "b1", f.s.CurrentLoop().ID)
}

func TestScheduler_UnquantizedFallback(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("beta")) // b1 has no sync points

	require.NoError(t, f.s.TransitionToTrack("alpha"))
	assert.Equal(t, StateTransitioning, f.s.State(),
		"no sync points falls back to an immediate crossfade")
	assert.True(t, f.s.IsTransitioning())
}

func TestScheduler_QuantizationDisabled(t *testing.T) {
	f := newFixture(t)
	f.s.SetQuantization(false)
	require.NoError(t, f.s.PlayTrack("alpha"))

	require.NoError(t, f.s.TransitionToLoopByIndex("alpha", 1))
	assert.Equal(t, StateTransitioning, f.s.State())
}

func TestScheduler_ImmediateFadeSupersedesPending(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("alpha"))

	f.clk.Set(1.0)
	require.NoError(t, f.s.TransitionToLoopByIndex("alpha", 1))
	require.Equal(t, StateWaitingForSync, f.s.State())
	require.True(t, f.s.HasScheduledTransition())

	// Turning quantization off mid-wait routes the next request through an
	// immediate crossfade, which must consume the waiting slot.
	f.s.SetQuantization(false)
	require.NoError(t, f.s.TransitionToTrack("beta"))
	assert.Equal(t, StateTransitioning, f.s.State())
	assert.False(t, f.s.HasScheduledTransition())

	for i := 0; i < 300; i++ {
		f.s.Tick(0.1)
	}
	assert.Equal(t, StatePlaying, f.s.State())
	assert.Equal(t, "beta", f.s.CurrentTrackKey())
	assert.False(t, f.s.HasScheduledTransition(),
		"nothing is pending once the crossfade has completed")
}

func TestScheduler_CrossfadeCompletesAndSwaps(t *testing.T) {
	f := newFixture(t)
	f.s.SetQuantization(false)
	require.NoError(t, f.s.PlayTrack("alpha"))

	var events []Event
	f.s.Subscribe(func(e Event) { events = append(events, e) })

	// Intra-track change: loop crossfade duration 0.3s.
	require.NoError(t, f.s.TransitionToLoopByIndex("alpha", 1))
	require.Equal(t, StateTransitioning, f.s.State())

	// Halfway: equal-power midpoint on both sets.
	f.s.Tick(0.15)
	mid := math.Cos(0.5 * math.Pi / 2)
	assert.InDelta(t, mid, f.a.Gains()[0], 1e-6)
	assert.InDelta(t, mid, f.b.Gains()[0], 1e-6)

	// Completion: outgoing stopped, incoming at full target gain, ownership
	// swapped, state back to Playing.
	f.s.Tick(0.15)
	assert.Equal(t, StatePlaying, f.s.State())
	assert.Equal(t, "a2", f.s.CurrentLoop().ID)
	assert.False(t, f.a.Running())
	assert.True(t, f.b.Running())
	assert.InDelta(t, 1.0, f.b.Gains()[0], 1e-9)

	require.Len(t, events, 1, "intra-track change emits LoopChanged only")
	assert.Equal(t, EventLoopChanged, events[0].Type)
	assert.Equal(t, "a2", events[0].Loop.ID)
}

func TestScheduler_TrackChangeEmitsBothEvents(t *testing.T) {
	f := newFixture(t)
	f.s.SetQuantization(false)
	require.NoError(t, f.s.PlayTrack("beta"))

	var events []Event
	f.s.Subscribe(func(e Event) { events = append(events, e) })

	require.NoError(t, f.s.TransitionToTrack("alpha"))
	for i := 0; i < 300; i++ {
		f.s.Tick(0.1)
	}

	require.Len(t, events, 2)
	assert.Equal(t, EventLoopChanged, events[0].Type)
	assert.Equal(t, EventTrackChanged, events[1].Type)
	assert.Equal(t, "alpha", events[1].TrackKey)
}

func TestScheduler_TransitionDuringCrossfadeRejected(t *testing.T) {
	f := newFixture(t)
	f.s.SetQuantization(false)
	require.NoError(t, f.s.PlayTrack("alpha"))
	require.NoError(t, f.s.TransitionToLoopByIndex("alpha", 1))
	require.Equal(t, StateTransitioning, f.s.State())

	err := f.s.TransitionToTrack("beta")
	assert.True(t, errors.Is(err, ErrTransitionInFlight))
	assert.Equal(t, StateTransitioning, f.s.State())
}

func TestScheduler_StopMusic(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("alpha"))
	f.clk.Set(1.0)
	require.NoError(t, f.s.TransitionToLoopByIndex("alpha", 1))
	require.True(t, f.s.HasScheduledTransition())

	var events []Event
	f.s.Subscribe(func(e Event) { events = append(events, e) })

	f.s.StopMusic()

	assert.Equal(t, StateStopped, f.s.State())
	assert.False(t, f.s.IsPlaying())
	assert.False(t, f.s.HasScheduledTransition())
	assert.Nil(t, f.s.CurrentLoop())
	assert.Equal(t, "", f.s.CurrentTrackKey())
	assert.False(t, f.a.Running())
	assert.False(t, f.b.Running())

	require.Len(t, events, 1)
	assert.Equal(t, EventMusicStopped, events[0].Type)

	// Stopping again is a no-op with no event.
	f.s.StopMusic()
	assert.Len(t, events, 1)
}

func TestScheduler_FadeOut(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("alpha"))

	var events []Event
	f.s.Subscribe(func(e Event) { events = append(events, e) })

	f.s.FadeOut(1.0)
	assert.Equal(t, StatePlaying, f.s.State())

	f.s.Tick(0.5)
	assert.InDelta(t, 0.5, f.a.Gains()[0], 1e-9, "linear ramp at halfway")

	f.s.Tick(0.5)
	assert.Equal(t, StateStopped, f.s.State())
	assert.False(t, f.a.Running())

	require.Len(t, events, 1)
	assert.Equal(t, EventMusicStopped, events[0].Type)
}

func TestScheduler_FadeOutZeroDurationStopsNow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("alpha"))

	f.s.FadeOut(0)
	assert.Equal(t, StateStopped, f.s.State())
}

func TestScheduler_CrossfadeInterruptsFadeOutFromCurrentGain(t *testing.T) {
	f := newFixture(t)
	f.s.SetQuantization(false)
	require.NoError(t, f.s.PlayTrack("alpha"))

	f.s.FadeOut(1.0)
	f.s.Tick(0.4) // envelope now 0.6

	require.NoError(t, f.s.TransitionToTrack("beta"))
	require.Equal(t, StateTransitioning, f.s.State())

	// At progress 0 the outgoing side resumes from the interrupted gain.
	f.s.Tick(0)
	assert.InDelta(t, 0.6, f.a.Gains()[0], 1e-9)
}

func TestScheduler_CurrentLoopPosition(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 0.0, f.s.CurrentLoopPosition())

	require.NoError(t, f.s.PlayTrack("alpha")) // loopStart = 0.1
	assert.Equal(t, 0.0, f.s.CurrentLoopPosition(), "zero before the scheduled start")

	f.clk.Set(3.1)
	assert.InDelta(t, 3.0, f.s.CurrentLoopPosition(), 1e-9)

	// Wraps modulo the 8s duration.
	f.clk.Set(17.1)
	assert.InDelta(t, 1.0, f.s.CurrentLoopPosition(), 1e-9)
}

func TestScheduler_TimeUntilNextSync(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, -1.0, f.s.TimeUntilNextSync())

	require.NoError(t, f.s.PlayTrack("alpha"))
	f.clk.Set(5.6) // position 5.5, next sync 6
	assert.InDelta(t, 0.5, f.s.TimeUntilNextSync(), 1e-9)

	require.NoError(t, f.s.PlayTrack("beta")) // no sync points
	assert.Equal(t, -1.0, f.s.TimeUntilNextSync())
}

func TestScheduler_StemControls(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("stems"))

	var events []Event
	f.s.Subscribe(func(e Event) { events = append(events, e) })

	require.NoError(t, f.s.SoloStem(2))
	assert.Equal(t, []float64{0, 0, 1, 0}, f.a.Gains())

	f.s.UnmuteAllStems()
	assert.Equal(t, []float64{1, 1, 1, 1}, f.a.Gains(),
		"unmute-all resets to full volume, not pre-solo values")

	require.NoError(t, f.s.SetStemVolume(1, 0.5))
	assert.InDelta(t, 0.5, f.a.Gains()[1], 1e-9)
	assert.InDelta(t, 0.5, f.s.StemVolume(1), 1e-9)

	require.NoError(t, f.s.MuteStem(0))
	assert.Equal(t, 0.0, f.a.Gains()[0])
	require.NoError(t, f.s.UnmuteStem(0))
	assert.Equal(t, 1.0, f.a.Gains()[0])

	// Volume clamping.
	require.NoError(t, f.s.SetStemVolume(3, 1.5))
	assert.Equal(t, 1.0, f.s.StemVolume(3))

	last := events[len(events)-1]
	assert.Equal(t, EventStemVolumeChanged, last.Type)

	// Out-of-range index aborts only that call.
	err := f.s.SetStemVolume(4, 0.5)
	assert.True(t, errors.Is(err, ErrStemIndex))
	err = f.s.SoloStem(-1)
	assert.True(t, errors.Is(err, ErrStemIndex))
	assert.Equal(t, []float64{1, 0.5, 1, 1}, f.a.Gains(), "state preserved after bad index")
}

func TestScheduler_StemMultiplierScalesFadeEnvelope(t *testing.T) {
	f := newFixture(t)
	f.s.SetQuantization(false)
	f.s.SetQualityAdaptive(true)
	require.NoError(t, f.s.PlayTrack("stems"))
	require.NoError(t, f.s.MuteStem(1))

	require.NoError(t, f.s.TransitionToTrack("alpha"))
	f.s.Tick(0.025) // quality tier 0.8 avg -> 0.05s duration, halfway

	gains := f.a.Gains()
	mid := math.Cos(0.5 * math.Pi / 2)
	assert.InDelta(t, mid, gains[0], 1e-6)
	assert.Equal(t, 0.0, gains[1], "muted stem stays silent inside the fade")
}

func TestScheduler_EventRegistrationOrder(t *testing.T) {
	f := newFixture(t)

	var order []string
	first := f.s.Subscribe(func(Event) { order = append(order, "first") })
	f.s.Subscribe(func(Event) { order = append(order, "second") })

	require.NoError(t, f.s.PlayTrack("beta"))
	require.GreaterOrEqual(t, len(order), 2)
	assert.Equal(t, []string{"first", "second"}, order[:2])

	// Unsubscribed handlers stop receiving.
	f.s.Unsubscribe(first)
	order = nil
	f.s.StopMusic()
	assert.Equal(t, []string{"second"}, order)
}

func TestScheduler_AutoProgression(t *testing.T) {
	f := newFixture(t)
	f.s.SetAutoProgress(true, 1000) // certain trigger once in the tail window
	require.NoError(t, f.s.PlayTrack("alpha"))
	f.s.randFn = func() float64 { return 0 }

	// Mid-loop: never triggers regardless of chance.
	f.clk.Set(4.1)
	f.s.Tick(0.016)
	assert.Equal(t, StatePlaying, f.s.State())
	assert.False(t, f.s.HasScheduledTransition())

	// Tail window: remaining 0.2 <= loop crossfade 0.3.
	f.clk.Set(7.9)
	f.s.Tick(0.016)
	assert.True(t, f.s.HasScheduledTransition(),
		"auto-progression issues a quantized transition to another loop")
}

func TestScheduler_AutoProgressionDisabledByDefault(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.PlayTrack("alpha"))
	f.s.randFn = func() float64 { return 0 }

	f.clk.Set(7.9)
	f.s.Tick(0.016)
	assert.False(t, f.s.HasScheduledTransition())
}

func TestScheduler_QualityAdaptiveDuration(t *testing.T) {
	f := newFixture(t)
	f.s.SetQuantization(false)
	f.s.SetQualityAdaptive(true)
	require.NoError(t, f.s.PlayTrack("alpha")) // quality 0.9

	// alpha(0.9) -> stems(0.8): avg 0.85, tightest tier 0.05s.
	require.NoError(t, f.s.TransitionToTrack("stems"))
	f.s.Tick(0.05)
	assert.Equal(t, StatePlaying, f.s.State(), "0.05s fade completes in one tick")
	assert.Equal(t, "stems", f.s.CurrentTrackKey())
}
