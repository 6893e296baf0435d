package player

import (
	"time"

	"github.com/olivier-w/snowglobe/internal/playback"
)

// Silent is a playback.Pipeline that plays nothing for a fixed duration.
// It stands in when audio is muted or no output device is available.
type Silent struct {
	duration time.Duration
	now      func() time.Time

	started time.Time
	playing bool
}

func NewSilent(d time.Duration) *Silent {
	return &Silent{duration: d, now: time.Now}
}

func (s *Silent) Start(playback.Asset) error {
	s.started = s.now()
	s.playing = true
	return nil
}

func (s *Silent) Step() bool {
	if !s.playing {
		return false
	}
	return s.now().Sub(s.started) < s.duration
}

func (s *Silent) Stop() {
	s.playing = false
}
