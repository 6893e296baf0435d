package player

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/olivier-w/snowglobe/internal/playback"
	"github.com/olivier-w/snowglobe/internal/trigger"
)

func writeWAV(t *testing.T, name string, bitDepth, channels int, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	enc := wav.NewEncoder(f, 22050, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: 22050},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing fixture: %v", err)
	}
	return path
}

func openDecoder(t *testing.T, path string) audioDecoder {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	dec, err := newDecoder(f)
	if err != nil {
		t.Fatalf("newDecoder returned error: %v", err)
	}
	return dec
}

func samplesOf(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func TestWAVDecoderPassesThrough16Bit(t *testing.T) {
	data := []int{100, -100, 32767, -32768, 0, 1}
	dec := openDecoder(t, writeWAV(t, "chime.wav", 16, 2, data))

	if dec.SampleRate() != 22050 || dec.ChannelCount() != 2 {
		t.Fatalf("expected 22050 Hz stereo, got %d Hz x%d", dec.SampleRate(), dec.ChannelCount())
	}
	if dec.Length() != int64(len(data)*2) {
		t.Fatalf("expected length %d, got %d", len(data)*2, dec.Length())
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("reading decoder: %v", err)
	}
	got := samplesOf(raw)
	if len(got) != len(data) {
		t.Fatalf("expected %d samples, got %d", len(data), len(got))
	}
	for i := range data {
		if int(got[i]) != data[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, data[i], got[i])
		}
	}
}

func TestWAVDecoderWidens8Bit(t *testing.T) {
	dec := openDecoder(t, writeWAV(t, "bell.wav", 8, 1, []int{128, 255, 0}))

	raw, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("reading decoder: %v", err)
	}
	got := samplesOf(raw)
	want := []int16{0, 127 << 8, -128 << 8}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestWAVDecoderSmallReadsKeepRemainder(t *testing.T) {
	data := []int{1, 2, 3, 4}
	dec := openDecoder(t, writeWAV(t, "tick.wav", 16, 2, data))

	var raw []byte
	buf := make([]byte, 3)
	for {
		n, err := dec.Read(buf)
		raw = append(raw, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading decoder: %v", err)
		}
	}
	got := samplesOf(raw)
	for i := range data {
		if int(got[i]) != data[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, data[i], got[i])
		}
	}
}

func TestNewDecoderRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("la la la"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	defer f.Close()

	if _, err := newDecoder(f); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNewFailsForMissingAsset(t *testing.T) {
	_, err := New(playback.Asset{Path: filepath.Join(t.TempDir(), "missing.mp3")}, Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestIdlePlayerIsInert(t *testing.T) {
	p := &Player{}
	if p.Step() {
		t.Fatal("expected idle player not to report running")
	}
	p.Stop()
	p.Stop()
	if p.Position() != 0 || p.Duration() != 0 {
		t.Fatalf("expected zero position and duration, got %v / %v", p.Position(), p.Duration())
	}
}

func TestSilentPlaysForDuration(t *testing.T) {
	now := time.Unix(0, 0)
	s := NewSilent(3 * time.Second)
	s.now = func() time.Time { return now }

	if s.Step() {
		t.Fatal("expected silent pipeline idle before start")
	}
	if err := s.Start(playback.Asset{}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	now = now.Add(2 * time.Second)
	if !s.Step() {
		t.Fatal("expected silent pipeline running within its duration")
	}
	now = now.Add(time.Second)
	if s.Step() {
		t.Fatal("expected silent pipeline exhausted after its duration")
	}

	s.Start(playback.Asset{})
	s.Stop()
	if s.Step() {
		t.Fatal("expected stop to end playback")
	}
}

func TestSilentDrivesControllerBackToIdle(t *testing.T) {
	now := time.Unix(0, 0)
	s := NewSilent(time.Second)
	s.now = func() time.Time { return now }

	cmds, err := trigger.NewChannel(1)
	if err != nil {
		t.Fatalf("NewChannel returned error: %v", err)
	}
	cmds.TrySend(trigger.Start, 0)
	c := playback.NewController(s, playback.Asset{Title: "hush"}, cmds, nil)
	c.Pass()
	if c.State() != playback.Playing {
		t.Fatalf("expected playing, got %v", c.State())
	}
	now = now.Add(2 * time.Second)
	c.Pass()
	if c.State() != playback.Idle {
		t.Fatalf("expected idle after silent duration, got %v", c.State())
	}
}

func TestMetadataFallsBackToFileName(t *testing.T) {
	path := writeWAV(t, "Sleigh Bells.wav", 16, 1, []int{0})
	m := ReadMetadata(path)
	if m.Title != "Sleigh Bells" {
		t.Fatalf("expected title from file name, got %q", m.Title)
	}
	if m.Label() != "Sleigh Bells" {
		t.Fatalf("expected label without artist, got %q", m.Label())
	}
	m.Artist = "Choir"
	if m.Label() != "Choir - Sleigh Bells" {
		t.Fatalf("expected artist label, got %q", m.Label())
	}
}

func TestChimeRendersDecayingStereo(t *testing.T) {
	pcm := renderChime(500 * time.Millisecond)
	frames := chimeFormat.SampleRate.N(500 * time.Millisecond)
	if len(pcm) != frames*4 {
		t.Fatalf("expected %d bytes, got %d", frames*4, len(pcm))
	}

	samples := samplesOf(pcm)
	peak := func(s []int16) int {
		m := 0
		for _, v := range s {
			m = max(m, int(v), -int(v))
		}
		return m
	}
	tenth := len(samples) / 10
	head, tail := peak(samples[:tenth]), peak(samples[len(samples)-tenth:])
	if head < 1000 {
		t.Fatalf("expected an audible attack, got peak %d", head)
	}
	if tail*4 > head {
		t.Fatalf("expected chime to decay, head peak %d tail peak %d", head, tail)
	}
	for i := 0; i < len(samples); i += 2 {
		if samples[i] != samples[i+1] {
			t.Fatalf("expected identical channels at frame %d", i/2)
		}
	}
}

func TestChimeDecoderReportsFormat(t *testing.T) {
	dec := newChimeDecoder(make([]byte, 400))
	if dec.Length() != 400 || dec.SampleRate() != 44100 || dec.ChannelCount() != 2 {
		t.Fatalf("unexpected chime format %d bytes %d Hz x%d", dec.Length(), dec.SampleRate(), dec.ChannelCount())
	}
}
