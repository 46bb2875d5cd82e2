// Package main provides the loopbox player entry point.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/loopbox/internal/app/scheduler"
	"github.com/osa030/loopbox/internal/domain/catalog"
	"github.com/osa030/loopbox/internal/infra/clock"
	"github.com/osa030/loopbox/internal/infra/config"
	"github.com/osa030/loopbox/internal/infra/library"
	"github.com/osa030/loopbox/internal/infra/logger"
	"github.com/osa030/loopbox/internal/infra/otoout"
)

var (
	app        = kingpin.New("loopbox", "Procedural music loop player")
	configPath = app.Flag("config", "Path to config file").Default("config/loopbox.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	validateCmd = app.Command("validate", "Load and validate the catalog, then exit")
	tracksCmd   = app.Command("tracks", "List catalog tracks and exit")

	playCmd     = app.Command("play", "Play a track").Default()
	playTrack   = playCmd.Arg("track", "Track key to play").Required().String()
	playLoop    = playCmd.Flag("loop", "Loop index to start from").Default("0").Int()
	playFadeSec = playCmd.Flag("fade-out", "Fade-out duration on interrupt, in seconds").Default("2.0").Float64()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}
	if !*verbose && *logfile == "" {
		if err := logger.Init(logger.Config{Output: cfg.Log.Output, Level: cfg.Log.Level}); err != nil {
			zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
		}
	}

	cat, err := library.Load(cfg.Catalog.Path, cfg.Catalog.MaxStems)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load catalog: %v", err)
	}

	switch command {
	case validateCmd.FullCommand():
		zlog.Info().Msgf("Catalog OK: %d tracks", cat.Len())
		return
	case tracksCmd.FullCommand():
		printTracks(cat)
		return
	}

	if err := run(cfg, cat); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// run executes the playback loop. Using a separate function ensures defer
// statements are executed even when returning with an error.
func run(cfg *config.Config, cat *catalog.Catalog) error {
	clk := clock.NewSystem()
	out, err := otoout.New(clk, cfg.Audio.SampleRate, cfg.Audio.ChannelCount, cfg.Audio.BufferMs)
	if err != nil {
		return err
	}

	sched := scheduler.New(cat, clk, out.NewSet(), out.NewSet(), cfg.SchedulerConfig())
	sched.Subscribe(logEvent)

	if err := sched.PlayLoopByIndex(*playTrack, *playLoop); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	tick := time.Duration(cfg.Scheduler.TickMs) * time.Millisecond
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := clk.Now()
	fading := false
	for {
		select {
		case <-ticker.C:
			now := clk.Now()
			sched.Tick(now - last)
			last = now
			if fading && !sched.IsPlaying() {
				zlog.Info().Msg("Playback stopped")
				return nil
			}
		case sig := <-sigCh:
			if fading {
				zlog.Info().Msgf("Received %v again, stopping immediately", sig)
				sched.StopMusic()
				return nil
			}
			zlog.Info().Msgf("Received %v, fading out over %.1fs", sig, *playFadeSec)
			sched.FadeOut(*playFadeSec)
			fading = true
		}
	}
}

func logEvent(e scheduler.Event) {
	ev := zlog.Info().Str("event", e.Type.String())
	switch e.Type {
	case scheduler.EventTrackChanged:
		ev.Msgf("Track changed to %q", e.TrackKey)
	case scheduler.EventLoopChanged:
		ev.Msgf("Loop changed to %q", e.Loop.ID)
	case scheduler.EventMusicStopped:
		ev.Msg("Music stopped")
	case scheduler.EventSyncPointReached:
		ev.Msgf("Sync point at %.2fs", e.ClockTime)
	case scheduler.EventStemVolumeChanged:
		ev.Msgf("Stem %d volume %.2f", e.StemIndex, e.StemVolume)
	default:
		ev.Msg("Event")
	}
}

func printTracks(cat *catalog.Catalog) {
	for _, key := range cat.Keys() {
		track, _ := cat.GetTrack(key)
		fmt.Printf("%s (%.0f BPM default, %.1fs total)\n", key, track.DefaultTempoBPM, track.TotalDuration())
		for i, rec := range track.Loops {
			kind := "clip"
			if rec.UseStems {
				kind = fmt.Sprintf("%d stems", rec.StemCount())
			}
			fmt.Printf("  [%d] %s  %.1fs  intensity %.2f  quality %.2f  %s\n",
				i, rec.ID, rec.DurationSec, rec.Intensity, rec.Quality, kind)
		}
	}
}
