package audio

import "math"

// Biquad is a second-order IIR section, normalized so a0 == 1.
type Biquad struct {
	B0, B1, B2, A1, A2 float64
}

// butterworthQ returns the section Q values of an even-order Butterworth filter.
func butterworthQ(order int) []float64 {
	qs := make([]float64, order/2)
	for k := range qs {
		theta := math.Pi * float64(2*k+1) / float64(2*order)
		qs[k] = 1 / (2 * math.Cos(theta))
	}
	return qs
}

// LowPass designs an order-th Butterworth low-pass at fc as a biquad cascade.
// order must be even.
func LowPass(fc float64, sr, order int) []Biquad {
	var out []Biquad
	for _, q := range butterworthQ(order) {
		w0 := 2 * math.Pi * fc / float64(sr)
		alpha := math.Sin(w0) / (2 * q)
		cos := math.Cos(w0)
		a0 := 1 + alpha
		out = append(out, Biquad{
			B0: (1 - cos) / 2 / a0,
			B1: (1 - cos) / a0,
			B2: (1 - cos) / 2 / a0,
			A1: -2 * cos / a0,
			A2: (1 - alpha) / a0,
		})
	}
	return out
}

// HighPass is the high-pass counterpart of LowPass.
func HighPass(fc float64, sr, order int) []Biquad {
	var out []Biquad
	for _, q := range butterworthQ(order) {
		w0 := 2 * math.Pi * fc / float64(sr)
		alpha := math.Sin(w0) / (2 * q)
		cos := math.Cos(w0)
		a0 := 1 + alpha
		out = append(out, Biquad{
			B0: (1 + cos) / 2 / a0,
			B1: -(1 + cos) / a0,
			B2: (1 + cos) / 2 / a0,
			A1: -2 * cos / a0,
			A2: (1 - alpha) / a0,
		})
	}
	return out
}

// apply runs x through the cascade (transposed direct form II) in place.
func apply(sections []Biquad, y []float64) {
	for _, s := range sections {
		var z1, z2 float64
		for i, v := range y {
			out := s.B0*v + z1
			z1 = s.B1*v - s.A1*out + z2
			z2 = s.B2*v - s.A2*out
			y[i] = out
		}
	}
}

// FiltFilt filters x forward and backward for zero phase and returns a new
// slice. The signal is extended at both ends by odd reflection to tame edge
// transients.
func FiltFilt(sections []Biquad, x []float64) []float64 {
	n := len(x)
	if n < 2 {
		return append([]float64(nil), x...)
	}
	pad := min(3*(2*len(sections)+1), n-1)

	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-pad; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}

	apply(sections, ext)
	reverse(ext)
	apply(sections, ext)
	reverse(ext)
	return ext[pad : pad+n]
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
