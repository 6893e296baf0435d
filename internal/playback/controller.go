// Package playback owns the audio pipeline lifecycle and reacts to
// commands queued by the simulation.
package playback

import (
	"context"
	"log/slog"
	"time"

	"github.com/olivier-w/snowglobe/internal/trigger"
)

// State is the controller's playback state.
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// Asset identifies the audio played on every Start. The controller passes
// it through without interpreting it.
type Asset struct {
	Path  string
	Title string
}

// Pipeline is the decode and output chain driven by the controller.
// Start acquires resources, Step advances playback once and reports
// whether it is still running, Stop releases everything Start acquired.
type Pipeline interface {
	Start(Asset) error
	Step() bool
	Stop()
}

// Receiver is the consuming end of a command queue.
type Receiver interface {
	TryReceive() (trigger.Command, bool)
}

// Controller is the Idle/Playing state machine. It must be driven from a
// single goroutine.
type Controller struct {
	pipeline Pipeline
	asset    Asset
	commands Receiver
	log      *slog.Logger

	state State
}

// NewController returns an idle controller. A nil logger discards output.
func NewController(p Pipeline, asset Asset, commands Receiver, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		pipeline: p,
		asset:    asset,
		commands: commands,
		log:      log.With("component", "playback"),
	}
}

// State returns the current state. Only safe from the driving goroutine.
func (c *Controller) State() State {
	return c.state
}

// Pass runs one scheduling pass: step the pipeline if playing, then apply
// at most one queued command.
func (c *Controller) Pass() {
	if c.state == Playing && !c.pipeline.Step() {
		c.log.Info("playback finished", "asset", c.asset.Title)
		c.release()
	}

	cmd, ok := c.commands.TryReceive()
	if !ok {
		return
	}
	c.apply(cmd)
}

func (c *Controller) apply(cmd trigger.Command) {
	switch cmd {
	case trigger.Start:
		if c.state == Playing {
			// Restart from the top rather than ignoring the request.
			c.log.Debug("restarting playback", "asset", c.asset.Title)
			c.release()
		}
		if err := c.pipeline.Start(c.asset); err != nil {
			c.log.Warn("playback start failed", "asset", c.asset.Path, "error", err)
			return
		}
		c.state = Playing
		c.log.Info("playback started", "asset", c.asset.Title)
	case trigger.Stop:
		if c.state != Playing {
			return
		}
		c.release()
		c.log.Info("playback stopped", "asset", c.asset.Title)
	default:
		c.log.Warn("unknown command", "command", cmd)
	}
}

func (c *Controller) release() {
	c.pipeline.Stop()
	c.state = Idle
}

// Run calls Pass every interval until ctx is cancelled, then releases any
// playing pipeline.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if c.state == Playing {
				c.release()
			}
			return ctx.Err()
		case <-ticker.C:
			c.Pass()
		}
	}
}
