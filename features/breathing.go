package features

import "github.com/maastricht-university/edmo-voice/audio"

const (
	breathLowHz  = 100
	breathHighHz = 1000
	breathOrder  = 4
)

type BreathingSummary struct {
	Rate       float64 `json:"breath_rate"`
	Regularity float64 `json:"breath_regularity"`
}

// AnalyzeBreathing band-passes the clip to the breath band, takes the Hilbert
// envelope and counts envelope peaks at least half a second apart. Rate is in
// breaths per minute; regularity is the coefficient of variation of the
// inter-peak intervals. Both are zero with fewer than two peaks.
func AnalyzeBreathing(samples []float64, sr int) BreathingSummary {
	if len(samples) < 2 || sr <= 0 || float64(sr)/2 <= breathHighHz {
		return BreathingSummary{}
	}
	filtered := audio.FiltFilt(bandpass(breathLowHz, breathHighHz, sr, breathOrder), samples)
	peaks := FindPeaks(envelope(filtered), sr/2)
	if len(peaks) < 2 {
		return BreathingSummary{}
	}

	intervals := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		intervals[i-1] = float64(peaks[i]-peaks[i-1]) / float64(sr)
	}
	mean, std := meanStd(intervals)
	if mean == 0 {
		return BreathingSummary{}
	}
	return BreathingSummary{Rate: 60 / mean, Regularity: std / mean}
}
