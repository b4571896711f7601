package features

import (
	"math"
	"math/cmplx"
)

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fft zero-pads x to a power of two and returns its spectrum.
func fft(x []float64) []complex128 {
	c := make([]complex128, nextPow2(len(x)))
	for i, v := range x {
		c[i] = complex(v, 0)
	}
	fftInPlace(c, false)
	return c
}

// ifft returns the inverse transform of a power-of-two spectrum, scaled by 1/n.
func ifft(spec []complex128) []complex128 {
	c := make([]complex128, len(spec))
	copy(c, spec)
	fftInPlace(c, true)
	n := complex(float64(len(c)), 0)
	for i := range c {
		c[i] /= n
	}
	return c
}

// fftInPlace is an iterative radix-2 Cooley-Tukey transform; len(a) must be a
// power of two.
func fftInPlace(a []complex128, inverse bool) {
	n := len(a)
	if n <= 1 {
		return
	}

	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		w := cmplx.Exp(complex(0, sign*2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			wn := complex(1, 0)
			for k := 0; k < half; k++ {
				t := wn * a[start+k+half]
				a[start+k+half] = a[start+k] - t
				a[start+k] = a[start+k] + t
				wn *= w
			}
		}
	}
}

// hann returns a symmetric Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
