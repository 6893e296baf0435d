// Package field holds the snowflake particles and the rules that move
// them each tick.
package field

import (
	"errors"
	"fmt"
	"math"

	"github.com/olivier-w/snowglobe/internal/motion"
)

const (
	// DefaultWidth and DefaultHeight match the 320x240 reference screen.
	DefaultWidth  = 320
	DefaultHeight = 240
	// DefaultCount is the number of flakes in the globe.
	DefaultCount = 250

	// New flakes start within this many pixels of the bottom edge.
	startBand = 20
)

var (
	ErrInvalidBounds = errors.New("field bounds must be positive")
	ErrInvalidCount  = errors.New("flake count must be positive")
)

// Rand is the randomness the field draws from. IntN returns a value in
// [0, n). *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Particle is one flake. Speed scales its drift and never changes.
type Particle struct {
	X, Y  int
	Speed float64
}

// Point is a rendered flake position.
type Point struct {
	X, Y int
}

// Field is a fixed set of flakes confined to [0,W]x[0,H].
// It is owned by a single goroutine and mutated in place.
type Field struct {
	width  int
	height int
	flakes []Particle
	rng    Rand
}

// New creates n flakes spread horizontally across the field and packed
// into the bottom band, each with its own speed in [0.20, 0.99].
func New(width, height, n int, rng Rand) (*Field, error) {
	if err := validate(width, height, n); err != nil {
		return nil, err
	}
	f := &Field{
		width:  width,
		height: height,
		flakes: make([]Particle, n),
		rng:    rng,
	}
	band := min(startBand, height)
	for i := range f.flakes {
		f.flakes[i] = Particle{
			X:     rng.IntN(width),
			Y:     height - band + rng.IntN(band),
			Speed: float64(rng.IntN(80)+20) / 100.0,
		}
	}
	return f, nil
}

// NewFromParticles builds a field around existing flakes. Positions are
// clamped into bounds.
func NewFromParticles(width, height int, flakes []Particle, rng Rand) (*Field, error) {
	if err := validate(width, height, len(flakes)); err != nil {
		return nil, err
	}
	f := &Field{
		width:  width,
		height: height,
		flakes: append([]Particle(nil), flakes...),
		rng:    rng,
	}
	for i := range f.flakes {
		f.clamp(&f.flakes[i])
	}
	return f, nil
}

func validate(width, height, n int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidBounds, width, height)
	}
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	return nil
}

// Advance moves every flake one tick. Shaking scatters flakes uniformly
// over the screen; calm ticks drift them along the gravity vector with
// per-flake jitter. Positions are clamped afterwards in both cases.
func (f *Field) Advance(state motion.State, a motion.Sample) {
	if state == motion.Shaking {
		for i := range f.flakes {
			p := &f.flakes[i]
			p.X = f.rng.IntN(f.width)
			p.Y = f.rng.IntN(f.height)
			f.clamp(p)
		}
		return
	}

	// A non-finite axis reads as level so it cannot poison positions.
	ax, ay := finite(a.X), finite(a.Y)
	// Rounded axes act as direction multipliers on the jitter terms.
	rx := math.Round(ax)
	ry := math.Round(ay)
	for i := range f.flakes {
		p := &f.flakes[i]
		// Draw order: x spread, x jitter, y spread, y jitter.
		dx := -10*ax + rx*f.spread() + ry*f.jitter()
		dy := 10*ay + rx*f.spread() + ry*f.jitter()
		p.X += int(math.Round(dx * p.Speed))
		p.Y += int(math.Round(dy * p.Speed))
		f.clamp(p)
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// spread draws from 0..4.
func (f *Field) spread() float64 {
	return float64(f.rng.IntN(5))
}

// jitter draws from -5..4.
func (f *Field) jitter() float64 {
	return float64(f.rng.IntN(10) - 5)
}

func (f *Field) clamp(p *Particle) {
	p.X = clampInt(p.X, 0, f.width)
	p.Y = clampInt(p.Y, 0, f.height)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bounds returns the field width and height.
func (f *Field) Bounds() (width, height int) {
	return f.width, f.height
}

// Len returns the number of flakes.
func (f *Field) Len() int {
	return len(f.flakes)
}

// Particles returns a copy of the flakes in their stable order.
func (f *Field) Particles() []Particle {
	return append([]Particle(nil), f.flakes...)
}

// Snapshot appends the flake positions to dst[:0] in stable order and
// returns the result.
func (f *Field) Snapshot(dst []Point) []Point {
	dst = dst[:0]
	for _, p := range f.flakes {
		dst = append(dst, Point{X: p.X, Y: p.Y})
	}
	return dst
}

// AtBottom counts flakes resting on the lower boundary.
func (f *Field) AtBottom() int {
	n := 0
	for _, p := range f.flakes {
		if p.Y == f.height {
			n++
		}
	}
	return n
}
