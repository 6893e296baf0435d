package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/olivier-w/snowglobe/internal/accel"
	"github.com/olivier-w/snowglobe/internal/config"
	"github.com/olivier-w/snowglobe/internal/playback"
	"github.com/olivier-w/snowglobe/internal/sim"
	"github.com/olivier-w/snowglobe/internal/trigger"
	"github.com/olivier-w/snowglobe/internal/ui"
)

var version = "dev"

func main() {
	cfg := config.Default()
	cmd := &cobra.Command{
		Use:   "snowglobe [audio-file]",
		Short: "A terminal snow globe with a chime",
		Long: `snowglobe drops snowflakes in a terminal globe. Tilt it with the arrow
keys, shake it with space, and the audio file plays once the shaking stops.
When every flake has reached the bottom playback is stopped.

Without an audio file, or with --mute, playback is silent but still runs.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd.Context(), cfg, path)
		},
	}
	cfg.BindFlags(cmd.Flags())

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if path != "" {
		if err := checkAsset(path); err != nil {
			return err
		}
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	seed := seedOf(cfg)
	driver, queue, err := newSimulation(cfg, seed, log)
	if err != nil {
		return err
	}

	asset := newAsset(path)
	pipeline, muted := newPipeline(cfg, asset, log)
	if muted && asset.Title != "" {
		asset.Title += " (muted)"
	}
	ctrl := playback.NewController(pipeline, asset, queue, log)

	// The playback task runs until the simulation task returns.
	playCtx, stopPlayback := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runPlayback(playCtx, ctrl, cfg.PollInterval, log)
	}()
	defer func() {
		stopPlayback()
		wg.Wait()
	}()

	src := newSource(cfg, seed)
	log.Info("snowglobe started", "seed", seed, "flakes", cfg.FlakeCount, "source", fmt.Sprintf("%T", src), "asset", asset.Path)

	if cfg.Headless {
		return runHeadless(ctx, driver, src, queue, cfg, log)
	}

	model := ui.New(ui.Options{
		Driver:   driver,
		Source:   src,
		Queue:    queue,
		Title:    asset.Title,
		Interval: cfg.TickInterval,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	log.Info("snowglobe stopped", "dropped", queue.Stats().Dropped)
	return nil
}

// runHeadless ticks the simulation without a terminal until ctx ends.
func runHeadless(ctx context.Context, d *sim.Driver, src accel.Source, queue *trigger.Channel, cfg config.Config, log *slog.Logger) error {
	var shakes int
	err := d.Run(ctx, src, cfg.TickInterval, func(res sim.Result) {
		if res.ShakeEnded {
			shakes++
			log.Info("shake ended", "tick", res.Tick, "shakes", shakes, "queued", queue.Len())
		}
	})
	st := queue.Stats()
	log.Info("snowglobe stopped", "shakes", shakes, "sent", st.Sent, "dropped", st.Dropped, "received", st.Received)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
