package features

import (
	"math/cmplx"

	"github.com/maastricht-university/edmo-voice/audio"
)

// bandpass cascades an order-th Butterworth high-pass at lo with an order-th
// Butterworth low-pass at hi.
func bandpass(lo, hi float64, sr, order int) []audio.Biquad {
	return append(audio.HighPass(lo, sr, order), audio.LowPass(hi, sr, order)...)
}

// envelope returns the magnitude of the analytic signal of x (Hilbert
// transform via FFT, zero-padded to a power of two).
func envelope(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	spec := fft(x)
	m := len(spec)
	for k := 1; k < m; k++ {
		switch {
		case k < m/2:
			spec[k] *= 2
		case k > m/2:
			spec[k] = 0
		}
	}
	analytic := ifft(spec)
	out := make([]float64, len(x))
	for i := range out {
		out[i] = cmplx.Abs(analytic[i])
	}
	return out
}
