// Package otoout plays channel sets through the ebitengine/oto backend.
// Channel files are raw interleaved float32 little-endian PCM at the
// configured sample rate; each file loops seamlessly until stopped.
package otoout

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/loopbox/internal/app/channel"
	"github.com/osa030/loopbox/internal/domain/loop"
	"github.com/osa030/loopbox/internal/infra/clock"
	"github.com/osa030/loopbox/internal/infra/library"
)

// Output owns the single process-wide audio context and mints channel sets
// that share it.
type Output struct {
	ctx *oto.Context
	clk clock.Clock
}

// New opens the audio device and blocks until it is ready.
func New(clk clock.Clock, sampleRate, channelCount, bufferMs int) (*Output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferMs) * time.Millisecond,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio device")
	}
	<-ready

	return &Output{ctx: ctx, clk: clk}, nil
}

// NewSet returns an idle set bound to this output.
func (o *Output) NewSet() channel.Set {
	return &set{out: o}
}

type playbackChannel struct {
	player *oto.Player
	file   *os.File
	trim   float64 // Static per-channel gain from catalog settings
	gain   float64
}

// set is a group of oto players started in phase by a shared timer. All
// players are created paused; the timer callback unpauses them together so
// stems stay sample-aligned.
type set struct {
	out *Output

	mu       sync.Mutex
	channels []*playbackChannel
	timer    *time.Timer
	gen      uint64 // Bumped on every Start/Stop to invalidate stale timers
}

func (s *set) Start(refs []loop.ChannelRef, atClockTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	channels := make([]*playbackChannel, 0, len(refs))
	for _, ref := range refs {
		ch, err := s.openChannel(ref)
		if err != nil {
			for _, c := range channels {
				c.player.Close()
				c.file.Close()
			}
			return errors.Wrapf(err, "failed to open channel %q", ref.Name)
		}
		channels = append(channels, ch)
	}
	s.channels = channels

	delay := time.Duration((atClockTime - s.out.clk.Now()) * float64(time.Second))
	if delay < 0 {
		delay = 0
	}
	// One timer for the whole set keeps multi-stem starts in phase.
	gen := s.gen
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return
		}
		for _, ch := range s.channels {
			ch.player.Play()
		}
	})

	zlog.Debug().Msgf("otoout: scheduled %d channels in %v", len(channels), delay)
	return nil
}

func (s *set) openChannel(ref loop.ChannelRef) (*playbackChannel, error) {
	settings, err := library.DecodeChannelSettings(ref.Settings)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(ref.File)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio file")
	}

	ch := &playbackChannel{
		player: s.out.ctx.NewPlayer(&loopReader{f: f}),
		file:   f,
		trim:   settings.Gain(),
		gain:   1,
	}
	ch.player.SetVolume(ch.trim)
	return ch, nil
}

func (s *set) SetChannelVolume(i int, gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.channels) {
		return
	}
	ch := s.channels[i]
	ch.gain = gain
	ch.player.SetVolume(gain * ch.trim)
}

func (s *set) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *set) stopLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for _, ch := range s.channels {
		if err := ch.player.Close(); err != nil {
			zlog.Warn().Msgf("otoout: failed to close player: %v", err)
		}
		ch.file.Close()
	}
	s.channels = nil
}

func (s *set) ChannelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channels)
}

// loopReader replays its file from the start whenever it runs out, so a
// loop never underruns between repeats.
type loopReader struct {
	f *os.File
}

func (r *loopReader) Read(p []byte) (int, error) {
	n, err := r.f.Read(p)
	if err == io.EOF {
		if _, serr := r.f.Seek(0, io.SeekStart); serr != nil {
			return n, serr
		}
		if n == 0 {
			return r.f.Read(p)
		}
		return n, nil
	}
	return n, err
}
