package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olivier-w/snowglobe/internal/accel"
	"github.com/olivier-w/snowglobe/internal/config"
	"github.com/olivier-w/snowglobe/internal/field"
	"github.com/olivier-w/snowglobe/internal/media"
	"github.com/olivier-w/snowglobe/internal/motion"
	"github.com/olivier-w/snowglobe/internal/playback"
	"github.com/olivier-w/snowglobe/internal/player"
	"github.com/olivier-w/snowglobe/internal/sim"
	"github.com/olivier-w/snowglobe/internal/trigger"
)

// wanderShakeEvery is how many reads pass between unattended shakes.
const wanderShakeEvery = 400

func checkAsset(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		return fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}
	return nil
}

// newLogger writes to the log file when one is set. Without one the TUI
// discards logs so the alt screen stays clean, and headless runs log to
// stderr.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, opts)), func() { f.Close() }, nil
	case cfg.Headless:
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	default:
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
}

func seedOf(cfg config.Config) uint64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return uint64(time.Now().UnixNano())
}

// newSimulation builds the field and the driver feeding the command queue.
func newSimulation(cfg config.Config, seed uint64, log *slog.Logger) (*sim.Driver, *trigger.Channel, error) {
	rng := rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
	f, err := field.New(cfg.FieldWidth, cfg.FieldHeight, cfg.FlakeCount, rng)
	if err != nil {
		return nil, nil, err
	}
	classifier, err := motion.NewClassifier(cfg.ShakeThreshold)
	if err != nil {
		return nil, nil, err
	}
	queue, err := trigger.NewChannel(cfg.ChannelCapacity)
	if err != nil {
		return nil, nil, err
	}
	d := sim.NewDriver(f, classifier, queue, sim.Options{
		StartTimeout: cfg.StartTimeout,
		Logger:       log,
	})
	return d, queue, nil
}

func newAsset(path string) playback.Asset {
	if path == "" {
		return playback.Asset{Title: "chime"}
	}
	return playback.Asset{Path: path, Title: player.ReadMetadata(path).Label()}
}

// newPipeline opens the audio output, falling back to silence when muted
// or when the device cannot be opened. Without an asset the built-in chime
// plays.
func newPipeline(cfg config.Config, asset playback.Asset, log *slog.Logger) (playback.Pipeline, bool) {
	if cfg.Mute {
		return player.NewSilent(cfg.SilentDuration), true
	}
	p, err := player.New(asset, player.Options{Volume: cfg.Volume, Logger: log})
	if err != nil {
		log.Warn("audio unavailable, playing silently", "err", err)
		return player.NewSilent(cfg.SilentDuration), true
	}
	return p, false
}

// newSource picks the acceleration source. Headless runs have no keyboard,
// so they always wander.
func newSource(cfg config.Config, seed uint64) accel.Source {
	if cfg.Headless || cfg.Source == config.SourceWander {
		return accel.NewWander(seed, wanderShakeEvery, accel.ShakeReads)
	}
	return accel.NewTilt(int(time.Second / cfg.TickInterval))
}

type playbackRunner interface {
	Run(ctx context.Context, interval time.Duration) error
}

// runPlayback drives the playback loop until ctx ends. An early exit is
// logged; cancellation is the normal way out.
func runPlayback(ctx context.Context, r playbackRunner, interval time.Duration, log *slog.Logger) {
	if err := r.Run(ctx, interval); err != nil && ctx.Err() == nil {
		log.Error("playback loop stopped", "err", err)
	}
}
