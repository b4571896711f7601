package features

// ZeroCrossingRate is the fraction of sign changes within the first frame of
// frameLen samples (or the whole clip if shorter).
func ZeroCrossingRate(samples []float64, frameLen int) float64 {
	frame := samples[:min(frameLen, len(samples))]
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame))
}

// SpeechRate approximates syllables per second as the number of peaks in a
// coarse energy curve (1024-sample frames every 512 samples, peaks at least
// five frames apart) divided by the clip duration.
func SpeechRate(samples []float64, sr int) float64 {
	if len(samples) == 0 || sr <= 0 {
		return 0
	}
	var energy []float64
	for start := 0; start < len(samples); start += 512 {
		end := min(start+1024, len(samples))
		e := 0.0
		for _, s := range samples[start:end] {
			e += s * s
		}
		energy = append(energy, e)
	}
	peaks := FindPeaks(energy, 5)
	return float64(len(peaks)) / (float64(len(samples)) / float64(sr))
}
