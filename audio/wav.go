package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupported is returned for files the decoder cannot read as PCM WAV.
var ErrUnsupported = errors.New("unsupported audio file")

// Load decodes a PCM WAV file, mixes it down to mono and resamples it to
// SampleRate.
func Load(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode is Load for an already opened stream.
func Decode(r io.ReadSeeker) (Waveform, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Waveform{}, fmt.Errorf("%w: not a valid wav file", ErrUnsupported)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("read pcm buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return Waveform{}, fmt.Errorf("%w: missing format", ErrUnsupported)
	}
	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = buf.SourceBitDepth
	}
	if depth < 8 || depth > 32 {
		return Waveform{}, fmt.Errorf("%w: bit depth %d", ErrUnsupported, depth)
	}

	mono := mixdown(buf.Data, buf.Format.NumChannels, depth)
	w := Waveform{Samples: mono, SampleRate: buf.Format.SampleRate}
	return Resample(w, SampleRate), nil
}

// mixdown averages interleaved channels and scales integer samples to [-1, 1].
func mixdown(data []int, channels, depth int) []float64 {
	scale := float64(int64(1) << (depth - 1))
	frames := len(data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			v := data[i*channels+c]
			if depth == 8 {
				// 8-bit wav is unsigned
				v -= 128
			}
			sum += float64(v)
		}
		out[i] = sum / float64(channels) / scale
	}
	return out
}

// WriteWAV encodes w as 16-bit mono PCM into ws.
func WriteWAV(ws io.WriteSeeker, w Waveform) error {
	enc := wav.NewEncoder(ws, w.SampleRate, 16, 1, 1)
	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		data[i] = int(toInt16(s))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: w.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}

// SaveWAV writes w to path as 16-bit mono PCM.
func SaveWAV(path string, w Waveform) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	if err := WriteWAV(f, w); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeWAV returns w as an in-memory 16-bit mono WAV file.
func EncodeWAV(w Waveform) ([]byte, error) {
	var mb memBuffer
	if err := WriteWAV(&mb, w); err != nil {
		return nil, err
	}
	return mb.buf, nil
}

// memBuffer is the io.WriteSeeker the wav encoder needs to patch its header.
type memBuffer struct {
	buf []byte
	pos int
}

func (m *memBuffer) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += n
	return n, nil
}

func (m *memBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(m.pos)
	case io.SeekEnd:
		base = int64(len(m.buf))
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	next := base + offset
	if next < 0 {
		return 0, errors.New("seek: negative position")
	}
	m.pos = int(next)
	return next, nil
}
