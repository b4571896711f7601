package audio

import (
	"encoding/binary"
	"math"
)

// SampleRate is the rate every loaded waveform is resampled to.
const SampleRate = 16000

// Waveform is a mono clip of samples in [-1, 1]. Methods never modify the
// receiver's samples; derived waveforms get their own backing array.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Peak returns the largest absolute sample value.
func (w Waveform) Peak() float64 {
	peak := 0.0
	for _, s := range w.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// Normalize returns a copy scaled so the peak magnitude is 1. Silent clips are
// copied unchanged.
func (w Waveform) Normalize() Waveform {
	out := Waveform{Samples: make([]float64, len(w.Samples)), SampleRate: w.SampleRate}
	peak := w.Peak()
	if peak == 0 {
		copy(out.Samples, w.Samples)
		return out
	}
	for i, s := range w.Samples {
		out.Samples[i] = s / peak
	}
	return out
}

// NormalizeSamples is Normalize for a bare sample slice.
func NormalizeSamples(samples []float64) []float64 {
	return Waveform{Samples: samples}.Normalize().Samples
}

// WithSamples returns a waveform at the same rate carrying samples.
func (w Waveform) WithSamples(samples []float64) Waveform {
	return Waveform{Samples: samples, SampleRate: w.SampleRate}
}

// PCM16 converts samples to 16-bit little-endian PCM, clipping to [-1, 1].
func PCM16(samples []float64) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(toInt16(s)))
	}
	return out
}

func toInt16(s float64) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
