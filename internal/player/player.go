// Package player decodes an audio file and plays it through oto.
package player

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/olivier-w/snowglobe/internal/playback"
)

const (
	bitDepth      = 2 // 16-bit = 2 bytes
	defaultVolume = 0.8
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrFormatMismatch    = errors.New("audio format differs from the output context")
)

// countingReader wraps an io.Reader and tracks bytes read. Oto reads it
// from its own goroutine.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

// Oto allows one context per process, so its format is fixed by the
// first asset opened.
var (
	globalOtoCtx *oto.Context
	otoFormat    [2]int
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			otoFormat = [2]int{sampleRate, channels}
		}
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if otoFormat != [2]int{sampleRate, channels} {
		return nil, fmt.Errorf("%w: %d Hz x%d, want %d Hz x%d",
			ErrFormatMismatch, sampleRate, channels, otoFormat[0], otoFormat[1])
	}
	return globalOtoCtx, nil
}

// Options configures a Player.
type Options struct {
	Volume float64
	Logger *slog.Logger
}

// Player is a playback.Pipeline backed by oto. Each Start opens the asset
// afresh and Stop releases the file and the oto player. It is driven by
// the playback goroutine only.
type Player struct {
	volume float64
	chime  []byte
	log    *slog.Logger

	file        *os.File
	decoder     audioDecoder
	counter     *countingReader
	otoPlayer   *oto.Player
	bytesPerSec int64
}

// New probes asset and opens the shared output context for its format.
// An asset without a path plays the built-in chime. An error means no
// audio can be played and callers should fall back to Silent.
func New(asset playback.Asset, opts Options) (*Player, error) {
	var chime []byte
	rate, channels := int(chimeFormat.SampleRate), chimeFormat.NumChannels
	if asset.Path == "" {
		chime = renderChime(chimeDuration)
	} else {
		f, dec, err := open(asset.Path)
		if err != nil {
			return nil, err
		}
		f.Close()
		rate, channels = dec.SampleRate(), dec.ChannelCount()
	}

	if _, err := initOto(rate, channels); err != nil {
		return nil, fmt.Errorf("opening audio output: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	vol := opts.Volume
	if vol < 0 || vol > 1 {
		vol = defaultVolume
	}
	return &Player{volume: vol, chime: chime, log: log.With("component", "player")}, nil
}

func open(path string) (*os.File, audioDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, dec, nil
}

// Start opens the asset and begins output.
func (p *Player) Start(asset playback.Asset) error {
	if p.otoPlayer != nil {
		p.Stop()
	}

	var (
		f   *os.File
		dec audioDecoder
		err error
	)
	if asset.Path == "" {
		dec = newChimeDecoder(p.chime)
	} else if f, dec, err = open(asset.Path); err != nil {
		return err
	}
	ctx, err := initOto(dec.SampleRate(), dec.ChannelCount())
	if err != nil {
		if f != nil {
			f.Close()
		}
		return err
	}

	p.file = f
	p.decoder = dec
	p.counter = &countingReader{reader: dec}
	p.bytesPerSec = int64(dec.SampleRate() * dec.ChannelCount() * bitDepth)
	p.otoPlayer = ctx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()
	p.log.Debug("output opened", "path", asset.Path, "duration", p.Duration())
	return nil
}

// Step reports whether oto is still draining the decoder.
func (p *Player) Step() bool {
	if p.otoPlayer == nil {
		return false
	}
	return p.otoPlayer.IsPlaying()
}

// Stop halts output and closes the asset. Safe to call when idle.
func (p *Player) Stop() {
	if p.otoPlayer == nil && p.file == nil {
		return
	}
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		p.log.Debug("output closed", "position", p.Position())
	}
	if p.file != nil {
		p.file.Close()
	}
	p.file = nil
	p.decoder = nil
	p.otoPlayer = nil
}

// Position returns how much of the asset has been handed to oto.
func (p *Player) Position() time.Duration {
	if p.counter == nil || p.bytesPerSec == 0 {
		return 0
	}
	return bytesToDuration(p.counter.Pos(), p.bytesPerSec)
}

// Duration returns the length of the open asset.
func (p *Player) Duration() time.Duration {
	if p.decoder == nil || p.bytesPerSec == 0 {
		return 0
	}
	return bytesToDuration(p.decoder.Length(), p.bytesPerSec)
}

func bytesToDuration(n, bytesPerSec int64) time.Duration {
	return time.Duration(float64(n) / float64(bytesPerSec) * float64(time.Second))
}
