// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/loopbox/internal/app/scheduler"
)

// Config represents the application configuration.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Audio     AudioConfig     `yaml:"audio"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// CatalogConfig represents catalog file configuration.
type CatalogConfig struct {
	Path     string `yaml:"path" validate:"required"`
	MaxStems int    `yaml:"max_stems" default:"8" validate:"gte=1,lte=64"`
}

// AudioConfig represents audio output configuration.
type AudioConfig struct {
	SampleRate   int `yaml:"sample_rate" default:"48000" validate:"gte=8000,lte=192000"`
	ChannelCount int `yaml:"channel_count" default:"2" validate:"gte=1,lte=2"`
	BufferMs     int `yaml:"buffer_ms" default:"50" validate:"gte=5,lte=1000"`
}

// SchedulerConfig represents playback scheduler configuration.
type SchedulerConfig struct {
	CrossfadeSec       float64 `yaml:"crossfade_sec" default:"2.0" validate:"gt=0"`
	LoopCrossfadeSec   float64 `yaml:"loop_crossfade_sec" default:"0.3" validate:"gt=0"`
	QualityAdaptive    *bool   `yaml:"quality_adaptive" default:"true"`
	Quantize           *bool   `yaml:"quantize" default:"true"`
	MaxSyncWaitSec     float64 `yaml:"max_sync_wait_sec" default:"8.0" validate:"gt=0"`
	ScheduleAheadSec   float64 `yaml:"schedule_ahead_sec" default:"0.1" validate:"gt=0,lte=1"`
	TickMs             int     `yaml:"tick_ms" default:"16" validate:"gte=1,lte=250"`
	AutoProgress       bool    `yaml:"auto_progress"`
	AutoProgressChance float64 `yaml:"auto_progress_chance" default:"0.25" validate:"gte=0,lte=1"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Output string `yaml:"output" default:"stdout"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("LOOPBOX_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("LOOPBOX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOOPBOX_SAMPLE_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Audio.SampleRate = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// The quantized wait must comfortably outlast the scheduling lead
	// time or every transition degenerates to an immediate fire.
	if c.Scheduler.MaxSyncWaitSec <= c.Scheduler.ScheduleAheadSec {
		return errors.Newf("max_sync_wait_sec (%.3f) must exceed schedule_ahead_sec (%.3f)",
			c.Scheduler.MaxSyncWaitSec, c.Scheduler.ScheduleAheadSec)
	}

	return nil
}

// SchedulerConfig converts to the scheduler's own config type.
func (c *Config) SchedulerConfig() scheduler.Config {
	return scheduler.Config{
		CrossfadeSec:       c.Scheduler.CrossfadeSec,
		LoopCrossfadeSec:   c.Scheduler.LoopCrossfadeSec,
		QualityAdaptive:    c.Scheduler.QualityAdaptive == nil || *c.Scheduler.QualityAdaptive,
		Quantize:           c.Scheduler.Quantize == nil || *c.Scheduler.Quantize,
		MaxSyncWaitSec:     c.Scheduler.MaxSyncWaitSec,
		ScheduleAheadSec:   c.Scheduler.ScheduleAheadSec,
		MaxStems:           c.Catalog.MaxStems,
		AutoProgress:       c.Scheduler.AutoProgress,
		AutoProgressChance: c.Scheduler.AutoProgressChance,
	}
}
