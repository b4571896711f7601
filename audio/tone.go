package audio

import "math"

// Tone synthesizes a sine at freq Hz with peak amplitude amp. A non-zero
// modHz multiplies it by 0.5+0.5*sin(2π·modHz·t), a crude syllable rhythm.
func Tone(freq, seconds, amp, modHz float64) Waveform {
	n := int(math.Round(seconds * SampleRate))
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / SampleRate
		s := amp * math.Sin(2*math.Pi*freq*t)
		if modHz != 0 {
			s *= 0.5 + 0.5*math.Sin(2*math.Pi*modHz*t)
		}
		out[i] = s
	}
	return Waveform{Samples: out, SampleRate: SampleRate}
}
