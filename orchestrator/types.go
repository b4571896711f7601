package orchestrator

import (
	"context"
)

// Unknown labels a window (or clip) without a usable emotion estimate.
const Unknown = "unknown"

const (
	MethodFull      = "windowed_multi_feature"
	MethodHeuristic = "basic_audio_features"
)

// Labels is the label set of the speech emotion classifier.
var Labels = []string{"angry", "disgust", "fear", "happy", "neutral", "sad", "surprise"}

// EmotionClassifier maps a window to a distribution over Labels.
type EmotionClassifier interface {
	Available(ctx context.Context) bool
	Classify(ctx context.Context, samples []float64, sampleRate int) (map[string]float64, error)
}

// EmbeddingExtractor maps a window to a fixed-dimension vector.
type EmbeddingExtractor interface {
	Available(ctx context.Context) bool
	Embed(ctx context.Context, samples []float64, sampleRate int) ([]float64, error)
	Model() string
}

// Transcriber is optional; without one every window counts as one word.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float64, sampleRate int) (string, error)
}

type EmotionEstimate struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Window is a slice [Start, Start+len(Samples)) of the processed clip.
type Window struct {
	Index   int
	Start   int
	Samples []float64
}

// WindowOutcome is everything the per-window adapter produced for one window.
// Err is set when classification failed; Emotion then holds the unknown
// placeholder. EmbedErr is set when the embedding call failed.
type WindowOutcome struct {
	Index         int
	Start         float64
	Emotion       EmotionEstimate
	Err           error
	VocalPressure float64
	Embedding     []float64
	EmbedErr      error
}

type FeatureSummary struct {
	PitchMean           float64 `json:"pitch_mean"`
	PitchStd            float64 `json:"pitch_std"`
	EnergyMean          float64 `json:"energy_mean"`
	SpeechSilenceRatio  float64 `json:"speech_silence_ratio"`
	BreathRate          float64 `json:"breath_rate"`
	VocalPressureMedian float64 `json:"vocal_pressure_median"`
}

type TimelineEntry struct {
	Start         float64 `json:"start"`
	Emotion       string  `json:"emotion"`
	Confidence    float64 `json:"confidence"`
	VocalPressure float64 `json:"vocal_pressure"`
	Cluster       *int    `json:"cluster"`
}

type Metadata struct {
	Duration       float64 `json:"duration"`
	Hash           string  `json:"hash"`
	WindowS        float64 `json:"window_s"`
	HopS           float64 `json:"hop_s"`
	EmbeddingModel string  `json:"embedding_model"`
}

type ClipEmotion struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Summary is the part of a result every variant can answer.
type Summary struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Duration   float64 `json:"duration"`
}

// Result is either a *FullResult or a *HeuristicResult.
type Result interface {
	Method() string
	Summary() Summary
	result()
}

// FullResult is the output of the windowed pipeline and the unit stored in
// the result cache.
type FullResult struct {
	AnalysisMethod string          `json:"analysis_method"`
	Emotion        ClipEmotion     `json:"emotion"`
	Features       FeatureSummary  `json:"features"`
	Timeline       []TimelineEntry `json:"timeline"`
	Metadata       Metadata        `json:"metadata"`
}

func (r *FullResult) Method() string { return MethodFull }
func (r *FullResult) Summary() Summary {
	return Summary{Emotion: r.Emotion.Label, Confidence: r.Emotion.Confidence, Duration: r.Metadata.Duration}
}
func (*FullResult) result() {}

// clone copies r deeply enough that the cached entry never aliases what a
// caller receives.
func (r *FullResult) clone() FullResult {
	out := *r
	if r.Timeline == nil {
		return out
	}
	tl := make([]TimelineEntry, len(r.Timeline))
	copy(tl, r.Timeline)
	for i := range tl {
		if c := tl[i].Cluster; c != nil {
			id := *c
			tl[i].Cluster = &id
		}
	}
	out.Timeline = tl
	return out
}

// HeuristicResult is produced when the model capabilities are unavailable.
type HeuristicResult struct {
	AnalysisMethod string             `json:"analysis_method"`
	Emotion        string             `json:"emotion"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
	Features       HeuristicFeatures  `json:"features"`
}

type HeuristicFeatures struct {
	Duration         float64 `json:"duration"`
	RMSEnergy        float64 `json:"rms_energy"`
	AvgPitch         float64 `json:"avg_pitch"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate"`
	SpeechRate       float64 `json:"speech_rate"`
}

func (r *HeuristicResult) Method() string { return MethodHeuristic }
func (r *HeuristicResult) Summary() Summary {
	return Summary{Emotion: r.Emotion, Confidence: r.Confidence, Duration: r.Features.Duration}
}
func (*HeuristicResult) result() {}
