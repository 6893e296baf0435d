package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/olivier-w/snowglobe/internal/media"
)

// audioDecoder yields interleaved signed 16-bit little-endian PCM.
// Length is in output bytes.
type audioDecoder interface {
	io.Reader
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// newDecoder picks a decoder from the file extension.
func newDecoder(f *os.File) (audioDecoder, error) {
	switch media.FormatOf(f.Name()) {
	case media.MP3:
		return newMP3Decoder(f)
	case media.WAV:
		return newWAVDecoder(f)
	case media.FLAC:
		return newFLACDecoder(f)
	case media.OGG:
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Name())
	}
}

// pcmOut holds converted bytes that did not fit the caller's buffer.
type pcmOut struct {
	pending  []byte
	total    int64
	channels int
}

// flush copies pending bytes into p.
func (o *pcmOut) flush(p []byte) int {
	n := copy(p, o.pending)
	o.pending = o.pending[n:]
	return n
}

// emit hands freshly converted bytes to p, keeping the remainder.
func (o *pcmOut) emit(p, raw []byte) int {
	o.pending = raw
	return o.flush(p)
}

func putSample(dst []byte, v int) {
	v = max(-32768, min(32767, v))
	binary.LittleEndian.PutUint16(dst, uint16(int16(v)))
}

// mp3Decoder wraps go-mp3, which already emits 16-bit stereo.
type mp3Decoder struct {
	*mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{Decoder: dec}, nil
}

func (d *mp3Decoder) ChannelCount() int { return 2 }

// wavDecoder reads the PCM chunk through a section reader so trailing
// chunks are never played.
type wavDecoder struct {
	pcmOut
	src        *io.SectionReader
	srcBytes   int // bytes per source sample
	sampleRate int
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV header", ErrUnsupportedFormat)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	start, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	srcBytes := int(dec.BitDepth) / 8
	if channels <= 0 || srcBytes < 1 || srcBytes > 4 {
		return nil, fmt.Errorf("%w: %d channels at %d bits", ErrUnsupportedFormat, channels, dec.BitDepth)
	}
	pcmLen := dec.PCMLen()
	frames := pcmLen / int64(channels*srcBytes)

	return &wavDecoder{
		pcmOut: pcmOut{
			total:    frames * int64(channels) * 2,
			channels: channels,
		},
		src:        io.NewSectionReader(f, start, pcmLen),
		srcBytes:   srcBytes,
		sampleRate: int(dec.SampleRate),
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.flush(p), nil
	}

	samples := max(1, len(p)/2)
	in := make([]byte, samples*d.srcBytes)
	n, err := io.ReadFull(d.src, in)
	got := n / d.srcBytes
	if got == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, got*2)
	for i := range got {
		putSample(raw[i*2:], wavSample(in[i*d.srcBytes:], d.srcBytes))
	}
	written := d.emit(p, raw)
	if len(d.pending) > 0 {
		err = nil
	} else if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return written, err
}

// wavSample converts one little-endian source sample to 16-bit range.
func wavSample(b []byte, width int) int {
	switch width {
	case 1:
		return (int(b[0]) - 128) << 8 // 8-bit WAV is unsigned
	case 2:
		return int(int16(binary.LittleEndian.Uint16(b)))
	case 3:
		s := int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
		return int(s >> 8)
	default:
		return int(int32(binary.LittleEndian.Uint32(b)) >> 16)
	}
}

func (d *wavDecoder) Length() int64     { return d.total }
func (d *wavDecoder) SampleRate() int   { return d.sampleRate }
func (d *wavDecoder) ChannelCount() int { return d.channels }

type flacDecoder struct {
	pcmOut
	stream     *flac.Stream
	sampleRate int
	bps        int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	return &flacDecoder{
		pcmOut: pcmOut{
			total:    int64(info.NSamples) * int64(channels) * 2,
			channels: channels,
		},
		stream:     stream,
		sampleRate: int(info.SampleRate),
		bps:        int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.flush(p), nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}
	n := int(frame.Subframes[0].NSamples)
	raw := make([]byte, n*d.channels*2)
	for i := range n {
		for ch := range d.channels {
			s := int(frame.Subframes[ch].Samples[i])
			if d.bps > 16 {
				s >>= d.bps - 16
			} else {
				s <<= 16 - d.bps
			}
			putSample(raw[(i*d.channels+ch)*2:], s)
		}
	}
	return d.emit(p, raw), nil
}

func (d *flacDecoder) Length() int64     { return d.total }
func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

type oggDecoder struct {
	pcmOut
	reader *oggvorbis.Reader
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	channels := reader.Channels()
	return &oggDecoder{
		pcmOut: pcmOut{
			total:    reader.Length() * int64(channels) * 2,
			channels: channels,
		},
		reader: reader,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.flush(p), nil
	}

	samples := make([]float32, max(1, len(p)/2))
	n, err := d.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	raw := make([]byte, n*2)
	for i, s := range samples[:n] {
		putSample(raw[i*2:], int(s*32767))
	}
	written := d.emit(p, raw)
	if len(d.pending) > 0 {
		err = nil
	}
	return written, err
}

func (d *oggDecoder) Length() int64     { return d.total }
func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.channels }
