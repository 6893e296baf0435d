package player

import (
	"bytes"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

const chimeDuration = 2 * time.Second

var chimeFormat = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

// chimePartials are the frequencies and gains of the built-in bell.
var chimePartials = [][2]float64{
	{880, 0.55},
	{1760, 0.25},
	{2637, 0.12},
}

// chimeStreamer mixes the bell partials, each decaying over d.
func chimeStreamer(d time.Duration) beep.Streamer {
	n := chimeFormat.SampleRate.N(d)
	parts := make([]beep.Streamer, 0, len(chimePartials))
	for _, p := range chimePartials {
		tone, err := generators.SineTone(chimeFormat.SampleRate, p[0])
		if err != nil {
			continue
		}
		parts = append(parts, &effects.Volume{
			Streamer: decay(beep.Take(n, tone), n),
			Base:     2,
			Volume:   math.Log2(p[1]),
		})
	}
	return beep.Mix(parts...)
}

// decay fades s exponentially across total samples.
func decay(s beep.Streamer, total int) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			g := math.Exp(-5 * float64(pos) / float64(total))
			samples[i][0] *= g
			samples[i][1] *= g
			pos++
		}
		return n, ok
	})
}

// renderChime encodes the bell as 16-bit little-endian stereo PCM.
func renderChime(d time.Duration) []byte {
	n := chimeFormat.SampleRate.N(d)
	pcm := make([]byte, n*chimeFormat.Width())
	s := chimeStreamer(d)
	buf := make([][2]float64, 512)
	off := 0
	for off < len(pcm) {
		got, ok := s.Stream(buf)
		for _, smp := range buf[:got] {
			if off >= len(pcm) {
				break
			}
			off += chimeFormat.EncodeSigned(pcm[off:], smp)
		}
		if !ok || got == 0 {
			break
		}
	}
	return pcm[:off]
}

// chimeDecoder plays pre-rendered chime PCM.
type chimeDecoder struct {
	*bytes.Reader
	size int64
}

func newChimeDecoder(pcm []byte) *chimeDecoder {
	return &chimeDecoder{Reader: bytes.NewReader(pcm), size: int64(len(pcm))}
}

func (d *chimeDecoder) Length() int64     { return d.size }
func (d *chimeDecoder) SampleRate() int   { return int(chimeFormat.SampleRate) }
func (d *chimeDecoder) ChannelCount() int { return chimeFormat.NumChannels }
