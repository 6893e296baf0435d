package motion

import (
	"errors"
	"fmt"
	"math"
)

// DefaultThreshold is the horizontal acceleration, in g, above which the
// globe counts as shaken.
const DefaultThreshold = 2.0

// ErrInvalidThreshold is returned for non-positive shake thresholds.
var ErrInvalidThreshold = errors.New("shake threshold must be positive")

// Sample is one 3-axis accelerometer reading in units of standard gravity.
type Sample struct {
	X, Y, Z float64
}

// State is the discrete motion state derived from a Sample.
type State int

const (
	Calm State = iota
	Shaking
)

func (s State) String() string {
	switch s {
	case Shaking:
		return "shaking"
	default:
		return "calm"
	}
}

// Classifier maps readings to a motion State.
type Classifier struct {
	threshold float64
}

// NewClassifier returns a Classifier using threshold g on the x and y axes.
func NewClassifier(threshold float64) (Classifier, error) {
	if !(threshold > 0) || math.IsInf(threshold, 1) {
		return Classifier{}, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	return Classifier{threshold: threshold}, nil
}

// Threshold returns the configured shake threshold in g.
func (c Classifier) Threshold() float64 {
	return c.threshold
}

// Classify reports Shaking iff |x| or |y| exceeds the threshold.
// The z axis never contributes.
func (c Classifier) Classify(s Sample) State {
	if math.Abs(s.X) > c.threshold || math.Abs(s.Y) > c.threshold {
		return Shaking
	}
	return Calm
}

// EdgeTracker remembers the previous tick's state so shake transitions
// fire exactly once.
type EdgeTracker struct {
	wasShaking bool
}

// Observe records the current state and reports whether a shaking episode
// just started or just ended.
func (e *EdgeTracker) Observe(s State) (started, ended bool) {
	shaking := s == Shaking
	started = shaking && !e.wasShaking
	ended = !shaking && e.wasShaking
	e.wasShaking = shaking
	return started, ended
}

// WasShaking reports the state seen on the last Observe call.
func (e *EdgeTracker) WasShaking() bool {
	return e.wasShaking
}
