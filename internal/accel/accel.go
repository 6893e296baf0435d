// Package accel provides acceleration readings for the simulation.
// Readings follow the device convention: +y points down the screen and
// +x points to its left, both in units of g.
package accel

import (
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/harmonica"
	"github.com/olivier-w/snowglobe/internal/motion"
)

// Source supplies one reading per simulation tick. Read never fails; a
// source that loses its sensor should repeat its last reading.
type Source interface {
	Read() motion.Sample
}

const (
	// MaxLean bounds a deliberate tilt so it never reads as a shake.
	MaxLean = 1.0
	// ShakeAmplitude is the x reading during a shake burst.
	ShakeAmplitude = 3.0
	// ShakeReads is how many readings a shake burst lasts.
	ShakeReads = 6

	springFrequency = 6.0
	springDamping   = 1.0 // critically damped
)

// Tilt is a keyboard-steered source. The gravity vector eases toward the
// target through springs so flakes swing instead of snapping. Not safe for
// concurrent use.
type Tilt struct {
	spring harmonica.Spring

	x, vx float64
	y, vy float64

	targetX float64
	targetY float64

	shake int
	sign  float64
}

// NewTilt returns an upright globe (gravity straight down) read fps
// times per second.
func NewTilt(fps int) *Tilt {
	if fps <= 0 {
		fps = 50
	}
	return &Tilt{
		spring:  harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
		y:       1,
		targetY: 1,
		sign:    1,
	}
}

// Lean moves the target gravity direction in screen terms: positive dx
// pulls flakes right, positive dy pulls them down.
func (t *Tilt) Lean(dx, dy float64) {
	t.targetX = clampLean(t.targetX - dx)
	t.targetY = clampLean(t.targetY + dy)
}

// Level returns the target to upright.
func (t *Tilt) Level() {
	t.targetX = 0
	t.targetY = 1
}

// Shake starts a burst of readings above the shake threshold.
func (t *Tilt) Shake() {
	t.shake = ShakeReads
}

// Target returns the gravity vector the readings are easing toward.
func (t *Tilt) Target() (x, y float64) {
	return t.targetX, t.targetY
}

func (t *Tilt) Read() motion.Sample {
	t.x, t.vx = t.spring.Update(t.x, t.vx, t.targetX)
	t.y, t.vy = t.spring.Update(t.y, t.vy, t.targetY)

	if t.shake > 0 {
		t.shake--
		t.sign = -t.sign
		return motion.Sample{X: t.sign * ShakeAmplitude, Y: t.y, Z: 1}
	}
	return motion.Sample{X: t.x, Y: t.y, Z: 1}
}

func clampLean(v float64) float64 {
	return math.Max(-MaxLean, math.Min(MaxLean, v))
}

const (
	wanderSwing = 0.4  // radians either side of straight down
	wanderRate  = 0.02 // radians of phase per read
	wanderNoise = 0.03
)

// Wander is an unattended source: gravity sways gently around straight
// down and the globe is shaken every shakeEvery reads. Deterministic for a
// given seed.
type Wander struct {
	rng        *rand.Rand
	shakeEvery int
	burst      int
	n          int
}

// NewWander returns a source that shakes for burst reads out of every
// shakeEvery.
func NewWander(seed uint64, shakeEvery, burst int) *Wander {
	if shakeEvery <= 0 {
		shakeEvery = 500
	}
	if burst <= 0 || burst >= shakeEvery {
		burst = min(ShakeReads, shakeEvery-1)
	}
	return &Wander{
		rng:        rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		shakeEvery: shakeEvery,
		burst:      burst,
	}
}

func (w *Wander) Read() motion.Sample {
	n := w.n
	w.n++

	if n%w.shakeEvery < w.burst {
		x := ShakeAmplitude
		if n%2 == 1 {
			x = -x
		}
		return motion.Sample{X: x, Y: w.rng.Float64()*2 - 1, Z: 1}
	}

	theta := wanderSwing * math.Sin(float64(n)*wanderRate)
	return motion.Sample{
		X: math.Sin(theta) + w.noise(),
		Y: math.Cos(theta) + w.noise(),
		Z: 1,
	}
}

func (w *Wander) noise() float64 {
	return (w.rng.Float64()*2 - 1) * wanderNoise
}
