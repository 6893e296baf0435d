// Package config holds every tunable of the snow globe.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/olivier-w/snowglobe/internal/field"
	"github.com/olivier-w/snowglobe/internal/motion"
	"github.com/olivier-w/snowglobe/internal/trigger"
)

var ErrInvalidConfig = errors.New("invalid config")

// Acceleration sources.
const (
	SourceTilt   = "tilt"
	SourceWander = "wander"
)

type Config struct {
	FieldWidth      int
	FieldHeight     int
	FlakeCount      int
	ChannelCapacity int
	ShakeThreshold  float64

	TickInterval time.Duration
	StartTimeout time.Duration // how long a Start may wait for queue space
	PollInterval time.Duration // playback loop cadence

	Seed   uint64 // 0 picks one from the clock
	Volume float64
	Source string

	Headless       bool
	Mute           bool
	SilentDuration time.Duration

	LogFile  string
	LogLevel string
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		FieldWidth:      field.DefaultWidth,
		FieldHeight:     field.DefaultHeight,
		FlakeCount:      field.DefaultCount,
		ChannelCapacity: trigger.DefaultCapacity,
		ShakeThreshold:  motion.DefaultThreshold,
		TickInterval:    20 * time.Millisecond,
		StartTimeout:    time.Millisecond,
		PollInterval:    time.Millisecond,
		Volume:          0.8,
		Source:          SourceTilt,
		SilentDuration:  3 * time.Second,
		LogLevel:        "info",
	}
}

// BindFlags registers a flag for each field, using the current values as
// defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.FieldWidth, "width", c.FieldWidth, "field width in pixels")
	fs.IntVar(&c.FieldHeight, "height", c.FieldHeight, "field height in pixels")
	fs.IntVarP(&c.FlakeCount, "flakes", "n", c.FlakeCount, "number of snowflakes")
	fs.IntVar(&c.ChannelCapacity, "queue", c.ChannelCapacity, "playback command queue capacity")
	fs.Float64Var(&c.ShakeThreshold, "threshold", c.ShakeThreshold, "shake threshold in g")
	fs.DurationVar(&c.TickInterval, "tick", c.TickInterval, "simulation tick interval")
	fs.DurationVar(&c.StartTimeout, "start-timeout", c.StartTimeout, "max wait to queue a start command")
	fs.DurationVar(&c.PollInterval, "poll", c.PollInterval, "playback loop interval")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed (0 = from clock)")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "playback volume 0..1")
	fs.StringVar(&c.Source, "source", c.Source, "acceleration source: tilt or wander")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "run without the terminal UI")
	fs.BoolVar(&c.Mute, "mute", c.Mute, "never open the audio device")
	fs.DurationVar(&c.SilentDuration, "silent-duration", c.SilentDuration, "length of muted playback")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.FieldWidth <= 0 || c.FieldHeight <= 0:
		return fmt.Errorf("%w: field %dx%d", ErrInvalidConfig, c.FieldWidth, c.FieldHeight)
	case c.FlakeCount <= 0:
		return fmt.Errorf("%w: %d flakes", ErrInvalidConfig, c.FlakeCount)
	case c.ChannelCapacity <= 0:
		return fmt.Errorf("%w: queue capacity %d", ErrInvalidConfig, c.ChannelCapacity)
	case !(c.ShakeThreshold > 0):
		return fmt.Errorf("%w: threshold %v", ErrInvalidConfig, c.ShakeThreshold)
	case c.TickInterval <= 0 || c.PollInterval <= 0:
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	case c.StartTimeout < 0:
		return fmt.Errorf("%w: negative start timeout", ErrInvalidConfig)
	case c.SilentDuration <= 0:
		return fmt.Errorf("%w: silent duration %v", ErrInvalidConfig, c.SilentDuration)
	case c.Volume < 0 || c.Volume > 1:
		return fmt.Errorf("%w: volume %v", ErrInvalidConfig, c.Volume)
	case c.Source != SourceTilt && c.Source != SourceWander:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return l, nil
}
