package audio

// antiAliasOrder is the Butterworth order of the low-pass run ahead of
// downsampling; its cutoff sits at antiAliasFrac of the target rate.
const (
	antiAliasOrder = 8
	antiAliasFrac  = 0.45
)

// Resample converts w to rate by linear interpolation. When downsampling, the
// input is first low-passed (zero phase) below the target Nyquist so that
// content above it does not fold back into the band. The output has
// round(len*rate/w.SampleRate) samples; a waveform already at rate is copied.
func Resample(w Waveform, rate int) Waveform {
	if w.SampleRate == rate || len(w.Samples) == 0 || w.SampleRate <= 0 {
		out := make([]float64, len(w.Samples))
		copy(out, w.Samples)
		return Waveform{Samples: out, SampleRate: rate}
	}
	src := w.Samples
	if rate < w.SampleRate {
		src = FiltFilt(LowPass(antiAliasFrac*float64(rate), w.SampleRate, antiAliasOrder), src)
	}
	ratio := float64(w.SampleRate) / float64(rate)
	n := int(float64(len(src))/ratio + 0.5)
	out := make([]float64, n)
	last := len(src) - 1
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= last {
			out[i] = src[last]
			continue
		}
		frac := pos - float64(j)
		out[i] = src[j]*(1-frac) + src[j+1]*frac
	}
	return Waveform{Samples: out, SampleRate: rate}
}
