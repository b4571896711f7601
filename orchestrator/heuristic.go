package orchestrator

import (
	"github.com/maastricht-university/edmo-voice/audio"
	"github.com/maastricht-university/edmo-voice/features"
)

const heuristicConfidence = 0.7

// heuristic is the single-shot analysis used when the model capabilities are
// unavailable. It guesses a coarse emotion from loudness and pitch.
func (p *Pipeline) heuristic(w audio.Waveform) *HeuristicResult {
	popt := features.DefaultPitchOptions()
	popt.MinHz, popt.MaxHz = 75, 400

	f := HeuristicFeatures{
		Duration:         w.Duration(),
		RMSEnergy:        features.RMS(w.Samples),
		AvgPitch:         features.AnalyzePitch(w.Samples, w.SampleRate, popt).Mean,
		ZeroCrossingRate: features.ZeroCrossingRate(w.Samples, popt.FFTSize),
		SpeechRate:       features.SpeechRate(w.Samples, w.SampleRate),
	}

	emotion := "neutral"
	switch {
	case f.AvgPitch > 200 && f.RMSEnergy > 0.1:
		emotion = "excited"
	case f.RMSEnergy < 0.05:
		emotion = "calm"
	}

	probs := map[string]float64{emotion: heuristicConfidence}
	if emotion != "neutral" {
		probs["neutral"] = 1 - heuristicConfidence
	}
	return &HeuristicResult{
		AnalysisMethod: MethodHeuristic,
		Emotion:        emotion,
		Confidence:     heuristicConfidence,
		Probabilities:  probs,
		Features:       f,
	}
}
