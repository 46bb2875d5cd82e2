// Package library loads the track catalog from a YAML file into domain
// entities. The catalog is authored offline; this loader is the single
// validation gate before records reach the scheduler.
package library

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/loopbox/internal/domain/catalog"
	"github.com/osa030/loopbox/internal/domain/loop"
)

type fileCatalog struct {
	Tracks []fileTrack `yaml:"tracks" validate:"required,min=1,dive"`
}

type fileTrack struct {
	Key             string     `yaml:"key" validate:"required"`
	DefaultTempoBPM float64    `yaml:"default_tempo_bpm" default:"120" validate:"gt=0"`
	Loops           []fileLoop `yaml:"loops" validate:"required,min=1,dive"`
}

type fileLoop struct {
	ID             string     `yaml:"id" validate:"required"`
	DurationSec    float64    `yaml:"duration_sec" validate:"gt=0"`
	TempoBPM       float64    `yaml:"tempo_bpm" validate:"gte=0"`
	Quality        float64    `yaml:"quality" default:"0.5" validate:"gte=0,lte=1"`
	Intensity      float64    `yaml:"intensity" default:"0.5" validate:"gte=0,lte=1"`
	Tags           []string   `yaml:"tags"`
	SyncPoints     []float64  `yaml:"sync_points"`
	SyncEveryBeats int        `yaml:"sync_every_beats" validate:"gte=0"`
	File           string     `yaml:"file"`
	Stems          []fileStem `yaml:"stems" validate:"dive"`
}

type fileStem struct {
	Name     string         `yaml:"name" validate:"required"`
	File     string         `yaml:"file" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// Load reads and validates a catalog file. Loops failing domain validation
// are skipped with a warning, and tracks left without loops are dropped:
// a bad loop never blocks the rest of the catalog.
func Load(path string, maxStems int) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog file")
	}

	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog file")
	}
	if err := defaults.Set(&fc); err != nil {
		return nil, errors.Wrap(err, "failed to set catalog defaults")
	}
	if err := validator.New().Struct(&fc); err != nil {
		return nil, errors.Wrap(err, "catalog validation failed")
	}

	root := filepath.Dir(path)
	cat := catalog.New()
	for _, ft := range fc.Tracks {
		track := buildTrack(ft, root, maxStems)
		if len(track.Loops) == 0 {
			zlog.Warn().Msgf("library: track %q has no valid loops, dropping", ft.Key)
			continue
		}
		if err := cat.Add(track); err != nil {
			return nil, err
		}
	}

	zlog.Info().Msgf("library: loaded %d tracks from %s", cat.Len(), path)
	return cat, nil
}

func buildTrack(ft fileTrack, root string, maxStems int) *catalog.Track {
	track := &catalog.Track{
		Key:             ft.Key,
		DefaultTempoBPM: ft.DefaultTempoBPM,
	}

	for _, fl := range ft.Loops {
		rec := buildLoop(fl, root, ft.DefaultTempoBPM)
		if err := rec.Validate(maxStems); err != nil {
			zlog.Warn().Msgf("library: skipping loop: %v", err)
			continue
		}
		track.Loops = append(track.Loops, rec)
	}
	return track
}

func buildLoop(fl fileLoop, root string, trackTempo float64) loop.Record {
	rec := loop.Record{
		ID:          fl.ID,
		DurationSec: fl.DurationSec,
		TempoBPM:    fl.TempoBPM,
		Quality:     fl.Quality,
		Intensity:   fl.Intensity,
		SyncPoints:  fl.SyncPoints,
	}

	if len(fl.Tags) > 0 {
		rec.Tags = make(map[string]struct{}, len(fl.Tags))
		for _, tag := range fl.Tags {
			rec.Tags[tag] = struct{}{}
		}
	}

	if len(fl.Stems) > 0 {
		rec.UseStems = true
		rec.Channels = make([]loop.ChannelRef, 0, len(fl.Stems))
		for _, st := range fl.Stems {
			rec.Channels = append(rec.Channels, loop.ChannelRef{
				Name:     st.Name,
				File:     filepath.Join(root, st.File),
				Settings: st.Settings,
			})
		}
	} else if fl.File != "" {
		rec.Channels = []loop.ChannelRef{{
			Name: "main",
			File: filepath.Join(root, fl.File),
		}}
	}

	// Loops authored without explicit sync points can derive them from the
	// tempo grid instead.
	if len(rec.SyncPoints) == 0 && fl.SyncEveryBeats > 0 {
		rec.SyncPoints = rec.SyncPointsEveryBeats(fl.SyncEveryBeats, trackTempo)
	}

	return rec
}
