package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olivier-w/snowglobe/internal/accel"
	"github.com/olivier-w/snowglobe/internal/config"
	"github.com/olivier-w/snowglobe/internal/playback"
	"github.com/olivier-w/snowglobe/internal/player"
)

func TestCheckAssetRejectsDirectoriesAndUnknownFormats(t *testing.T) {
	dir := t.TempDir()
	if err := checkAsset(dir); err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("expected directory error, got %v", err)
	}

	txt := filepath.Join(dir, "carol.txt")
	if err := os.WriteFile(txt, []byte("fa la la"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := checkAsset(txt); err == nil || !strings.Contains(err.Error(), "unsupported format .txt") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}

	wav := filepath.Join(dir, "chime.WAV")
	if err := os.WriteFile(wav, nil, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := checkAsset(wav); err != nil {
		t.Fatalf("expected .WAV to be accepted, got %v", err)
	}
}

func TestNewPipelineMutedIsSilent(t *testing.T) {
	cfg := config.Default()
	log := slog.New(slog.DiscardHandler)

	cfg.Mute = true
	p, muted := newPipeline(cfg, playback.Asset{Path: "chime.mp3"}, log)
	if _, ok := p.(*player.Silent); !ok || !muted {
		t.Fatalf("expected muted silent pipeline, got %T", p)
	}
}

func TestNewSourceHeadlessAlwaysWanders(t *testing.T) {
	cfg := config.Default()
	if _, ok := newSource(cfg, 1).(*accel.Tilt); !ok {
		t.Fatal("expected tilt source by default")
	}
	cfg.Headless = true
	if _, ok := newSource(cfg, 1).(*accel.Wander); !ok {
		t.Fatal("expected wander source when headless")
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	cfg := config.Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "snowglobe.log")

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}
	log.Info("flakes settled", "tick", 7)
	log.Debug("hidden")
	closeLog()

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "flakes settled") || strings.Contains(string(data), "hidden") {
		t.Fatalf("unexpected log contents %q", data)
	}
}

func TestRunHeadlessStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Headless = true
	cfg.Mute = true
	cfg.FlakeCount = 20
	cfg.Seed = 9
	cfg.TickInterval = time.Millisecond
	cfg.LogFile = filepath.Join(t.TempDir(), "headless.log")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := run(ctx, cfg, ""); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "snowglobe stopped") {
		t.Fatalf("expected shutdown log, got %q", data)
	}
}

type stubRunner struct{ err error }

func (r stubRunner) Run(ctx context.Context, _ time.Duration) error {
	if r.err != nil {
		return r.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunPlaybackLogsOnlyEarlyExit(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runPlayback(ctx, stubRunner{}, time.Millisecond, log)
	if buf.Len() != 0 {
		t.Fatalf("expected cancellation to stay quiet, got %q", buf.String())
	}

	runPlayback(context.Background(), stubRunner{err: errors.New("device lost")}, time.Millisecond, log)
	if !strings.Contains(buf.String(), "playback loop stopped") || !strings.Contains(buf.String(), "device lost") {
		t.Fatalf("expected early exit to be logged, got %q", buf.String())
	}
}
