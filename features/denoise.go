package features

import (
	"math"
	"math/cmplx"
)

// GateOptions configures the stationary spectral gate.
type GateOptions struct {
	FFTSize   int
	Hop       int
	StdThresh float64 // bins quieter than mean + StdThresh*std (dB) are gated
}

func DefaultGateOptions() GateOptions {
	return GateOptions{FFTSize: 1024, Hop: 256, StdThresh: 1.5}
}

// ReduceNoise applies a stationary spectral gate: a per-frequency noise
// threshold is estimated from the clip itself and every STFT bin below it is
// zeroed before overlap-add resynthesis. The result has the input's length.
func ReduceNoise(samples []float64, opt GateOptions) []float64 {
	n, hop := opt.FFTSize, opt.Hop
	if len(samples) == 0 || n <= 0 || hop <= 0 || n&(n-1) != 0 {
		return append([]float64(nil), samples...)
	}
	win := hann(n)
	half := n / 2

	total := len(samples) + n
	if rem := (total - n) % hop; rem != 0 {
		total += hop - rem
	}
	padded := make([]float64, total)
	copy(padded[half:], samples)

	var frames [][]complex128
	frame := make([]float64, n)
	for start := 0; start+n <= len(padded); start += hop {
		for i := range frame {
			frame[i] = padded[start+i] * win[i]
		}
		frames = append(frames, fft(frame))
	}

	bins := half + 1
	mean := make([]float64, bins)
	sq := make([]float64, bins)
	for _, spec := range frames {
		for k := 0; k < bins; k++ {
			db := 20 * math.Log10(cmplx.Abs(spec[k])+1e-10)
			mean[k] += db
			sq[k] += db * db
		}
	}
	thresh := make([]float64, bins)
	count := float64(len(frames))
	for k := range thresh {
		m := mean[k] / count
		std := math.Sqrt(math.Max(sq[k]/count-m*m, 0))
		thresh[k] = m + opt.StdThresh*std
	}

	out := make([]float64, len(padded))
	norm := make([]float64, len(padded))
	for f, spec := range frames {
		for k := 0; k < bins; k++ {
			if 20*math.Log10(cmplx.Abs(spec[k])+1e-10) <= thresh[k] {
				spec[k] = 0
				if k > 0 && k < half {
					spec[n-k] = 0
				}
			}
		}
		seq := ifft(spec)
		start := f * hop
		for i := 0; i < n; i++ {
			out[start+i] += real(seq[i]) * win[i]
			norm[start+i] += win[i] * win[i]
		}
	}
	for i := range out {
		if norm[i] > 1e-8 {
			out[i] /= norm[i]
		}
	}
	return out[half : half+len(samples)]
}
