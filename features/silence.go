package features

// SilenceOptions configures the frame energy silence detector.
type SilenceOptions struct {
	FrameMs   int
	Threshold float64
}

func DefaultSilenceOptions() SilenceOptions {
	return SilenceOptions{FrameMs: 30, Threshold: 0.01}
}

// DetectSilence splits samples into consecutive FrameMs frames and marks a
// frame silent when its RMS is below Threshold. The last frame may be short.
func DetectSilence(samples []float64, sr int, opt SilenceOptions) (silent []bool, energy []float64) {
	frame := sr * opt.FrameMs / 1000
	if frame <= 0 {
		frame = 1
	}
	for start := 0; start < len(samples); start += frame {
		end := min(start+frame, len(samples))
		e := RMS(samples[start:end])
		energy = append(energy, e)
		silent = append(silent, e < opt.Threshold)
	}
	return silent, energy
}

// SilenceRatio is the fraction of silent frames. A clip with no frames counts
// as fully silent.
func SilenceRatio(silent []bool) float64 {
	if len(silent) == 0 {
		return 1
	}
	n := 0
	for _, s := range silent {
		if s {
			n++
		}
	}
	return float64(n) / float64(len(silent))
}
