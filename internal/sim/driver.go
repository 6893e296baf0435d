// Package sim runs the snow globe simulation tick by tick and turns
// motion edges into playback commands.
package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/olivier-w/snowglobe/internal/accel"
	"github.com/olivier-w/snowglobe/internal/field"
	"github.com/olivier-w/snowglobe/internal/motion"
	"github.com/olivier-w/snowglobe/internal/trigger"
)

// Sender is the producing end of the playback command queue.
type Sender interface {
	TrySend(cmd trigger.Command, timeout time.Duration) bool
}

// Options tunes a Driver.
type Options struct {
	// StartTimeout bounds how long a Start request may wait for queue
	// space. Stop requests never wait.
	StartTimeout time.Duration
	Logger       *slog.Logger
}

// Result describes what happened during one tick.
type Result struct {
	Tick         uint64
	Sample       motion.Sample
	State        motion.State
	ShakeStarted bool
	ShakeEnded   bool
	Settled      bool
	// Dropped is set when a command produced this tick could not be queued.
	Dropped  bool
	AtBottom int
}

// Driver owns the field and the edge latches. It must be driven from a
// single goroutine.
type Driver struct {
	field      *field.Field
	classifier motion.Classifier
	edges      motion.EdgeTracker
	settle     *field.SettleDetector
	out        Sender

	startTimeout time.Duration
	log          *slog.Logger
	tick         uint64
}

func NewDriver(f *field.Field, c motion.Classifier, out Sender, opts Options) *Driver {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Driver{
		field:        f,
		classifier:   c,
		settle:       field.NewSettleDetector(),
		out:          out,
		startTimeout: opts.StartTimeout,
		log:          log.With("component", "sim"),
	}
}

// Tick advances the simulation by one reading.
func (d *Driver) Tick(s motion.Sample) Result {
	d.tick++
	state := d.classifier.Classify(s)
	started, ended := d.edges.Observe(state)
	res := Result{
		Tick:         d.tick,
		Sample:       s,
		State:        state,
		ShakeStarted: started,
		ShakeEnded:   ended,
	}

	if started {
		d.log.Debug("shake started", "tick", d.tick, "x", s.X, "y", s.Y)
	}
	if ended {
		d.settle.Reset()
		if !d.send(trigger.Start, d.startTimeout) {
			res.Dropped = true
		}
	}

	d.field.Advance(state, s)

	if d.settle.Update(d.field) {
		res.Settled = true
		d.log.Info("flakes settled", "tick", d.tick)
		if !d.send(trigger.Stop, 0) {
			res.Dropped = true
		}
	}
	res.AtBottom = d.field.AtBottom()
	return res
}

func (d *Driver) send(cmd trigger.Command, timeout time.Duration) bool {
	if d.out.TrySend(cmd, timeout) {
		d.log.Debug("command queued", "command", cmd, "tick", d.tick)
		return true
	}
	d.log.Warn("command dropped", "command", cmd, "tick", d.tick)
	return false
}

// Snapshot appends the current flake positions to dst[:0].
func (d *Driver) Snapshot(dst []field.Point) []field.Point {
	return d.field.Snapshot(dst)
}

// Bounds returns the field size.
func (d *Driver) Bounds() (width, height int) {
	return d.field.Bounds()
}

// Flakes returns the number of flakes.
func (d *Driver) Flakes() int {
	return d.field.Len()
}

// Settled reports whether the settle latch is set.
func (d *Driver) Settled() bool {
	return d.settle.Settled()
}

// Run reads src and ticks every interval until ctx is cancelled. onTick,
// if non-nil, sees every result.
func (d *Driver) Run(ctx context.Context, src accel.Source, interval time.Duration, onTick func(Result)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res := d.Tick(src.Read())
			if onTick != nil {
				onTick(res)
			}
		}
	}
}
