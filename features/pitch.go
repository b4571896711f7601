package features

import (
	"math"
	"math/cmplx"
)

// PitchOptions configures the spectral peak pitch tracker.
type PitchOptions struct {
	MinHz     float64
	MaxHz     float64
	FFTSize   int
	Hop       int
	Threshold float64 // relative to the frame's strongest bin
}

func DefaultPitchOptions() PitchOptions {
	return PitchOptions{MinHz: 75, MaxHz: 4000, FFTSize: 2048, Hop: 512, Threshold: 0.1}
}

// PitchSummary aggregates the voiced frames of a clip.
type PitchSummary struct {
	Mean  float64 `json:"mean_pitch"`
	Std   float64 `json:"pitch_std"`
	Range float64 `json:"pitch_range"`
}

// TrackPitch estimates one pitch per STFT frame: the strongest local spectral
// peak inside [MinHz, MaxHz] whose magnitude exceeds Threshold times the
// frame maximum, refined by parabolic interpolation on log magnitude.
// Unvoiced frames yield 0.
func TrackPitch(samples []float64, sr int, opt PitchOptions) []float64 {
	n := opt.FFTSize
	if len(samples) == 0 || n <= 0 || sr <= 0 {
		return nil
	}
	hop := max(opt.Hop, 1)
	win := hann(n)

	lo := max(int(math.Ceil(opt.MinHz*float64(n)/float64(sr))), 1)
	hi := min(int(math.Floor(opt.MaxHz*float64(n)/float64(sr))), n/2-1)

	var out []float64
	frame := make([]float64, n)
	mags := make([]float64, n/2+1)
	for start := 0; start == 0 || start+n <= len(samples); start += hop {
		for i := range frame {
			frame[i] = 0
			if start+i < len(samples) {
				frame[i] = samples[start+i] * win[i]
			}
		}
		spec := fft(frame)
		peak := 0.0
		for k := range mags {
			mags[k] = cmplx.Abs(spec[k])
			peak = max(peak, mags[k])
		}
		out = append(out, framePitch(mags, lo, hi, peak*opt.Threshold, sr, n))
		if start+n >= len(samples) {
			break
		}
	}
	return out
}

func framePitch(mags []float64, lo, hi int, floor float64, sr, n int) float64 {
	if floor <= 1e-10 {
		return 0
	}
	best := -1
	for k := lo; k <= hi; k++ {
		m := mags[k]
		if m <= floor || m <= mags[k-1] || m < mags[k+1] {
			continue
		}
		if best < 0 || m > mags[best] {
			best = k
		}
	}
	if best < 0 {
		return 0
	}
	a := math.Log(mags[best-1] + 1e-12)
	b := math.Log(mags[best] + 1e-12)
	c := math.Log(mags[best+1] + 1e-12)
	shift := 0.0
	if d := a - 2*b + c; d != 0 {
		shift = 0.5 * (a - c) / d
	}
	return (float64(best) + shift) * float64(sr) / float64(n)
}

// AnalyzePitch summarizes the positive pitch estimates of a clip; the summary
// is all zero when no frame is voiced.
func AnalyzePitch(samples []float64, sr int, opt PitchOptions) PitchSummary {
	var voiced []float64
	for _, p := range TrackPitch(samples, sr, opt) {
		if p > 0 {
			voiced = append(voiced, p)
		}
	}
	if len(voiced) == 0 {
		return PitchSummary{}
	}
	mean, std := meanStd(voiced)
	lo, hi := span(voiced)
	return PitchSummary{Mean: mean, Std: std, Range: hi - lo}
}
