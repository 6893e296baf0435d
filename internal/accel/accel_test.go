package accel

import (
	"math"
	"testing"

	"github.com/olivier-w/snowglobe/internal/motion"
)

func mustClassifier(t *testing.T) motion.Classifier {
	t.Helper()
	c, err := motion.NewClassifier(motion.DefaultThreshold)
	if err != nil {
		t.Fatalf("NewClassifier returned error: %v", err)
	}
	return c
}

func TestTiltStartsUpright(t *testing.T) {
	tilt := NewTilt(50)
	s := tilt.Read()
	if math.Abs(s.X) > 1e-9 || math.Abs(s.Y-1) > 1e-9 {
		t.Fatalf("expected upright reading (0,1), got (%v,%v)", s.X, s.Y)
	}
}

func TestTiltEasesTowardTarget(t *testing.T) {
	tilt := NewTilt(50)
	tilt.Lean(0.5, 0)

	first := tilt.Read()
	if first.X >= 0 {
		t.Fatalf("expected leaning right to pull x negative, got %v", first.X)
	}
	if first.X <= -0.5 {
		t.Fatalf("expected spring to ease in, got %v on the first read", first.X)
	}

	var last motion.Sample
	for range 200 {
		last = tilt.Read()
	}
	if math.Abs(last.X+0.5) > 0.01 {
		t.Fatalf("expected x to settle near -0.5, got %v", last.X)
	}
}

func TestTiltLeanIsClampedBelowShakeThreshold(t *testing.T) {
	tilt := NewTilt(50)
	c := mustClassifier(t)
	for range 20 {
		tilt.Lean(1, 1)
	}
	x, y := tilt.Target()
	if x != -MaxLean || y != MaxLean {
		t.Fatalf("expected target clamped to (%v,%v), got (%v,%v)", -MaxLean, MaxLean, x, y)
	}
	for range 300 {
		if c.Classify(tilt.Read()) != motion.Calm {
			t.Fatal("expected leaning alone never to read as a shake")
		}
	}

	tilt.Level()
	if x, y := tilt.Target(); x != 0 || y != 1 {
		t.Fatalf("expected level target (0,1), got (%v,%v)", x, y)
	}
}

func TestTiltShakeBurst(t *testing.T) {
	tilt := NewTilt(50)
	c := mustClassifier(t)
	tilt.Shake()

	for i := range ShakeReads {
		if c.Classify(tilt.Read()) != motion.Shaking {
			t.Fatalf("expected read %d of the burst to be shaking", i)
		}
	}
	if c.Classify(tilt.Read()) != motion.Calm {
		t.Fatal("expected calm once the burst is spent")
	}
}

func TestWanderShakesOnSchedule(t *testing.T) {
	w := NewWander(7, 100, 4)
	c := mustClassifier(t)

	for n := range 300 {
		s := w.Read()
		want := motion.Calm
		if n%100 < 4 {
			want = motion.Shaking
		}
		if got := c.Classify(s); got != want {
			t.Fatalf("read %d: expected %v, got %v (%+v)", n, want, got, s)
		}
		if want == motion.Calm && (s.Y < 0.85 || math.Abs(s.X) >= 0.5) {
			t.Fatalf("read %d: expected gentle downward gravity, got %+v", n, s)
		}
	}
}

func TestWanderIsDeterministic(t *testing.T) {
	a := NewWander(42, 50, 3)
	b := NewWander(42, 50, 3)
	for i := range 120 {
		if sa, sb := a.Read(), b.Read(); sa != sb {
			t.Fatalf("read %d: expected identical readings, got %+v and %+v", i, sa, sb)
		}
	}
}
