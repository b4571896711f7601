package orchestrator

import (
	"errors"
	"math"
	"sort"

	"github.com/maastricht-university/edmo-voice/features"
)

// SliceWindows lays windows of winLen samples every hopLen samples over a clip
// of n samples. Windows are never padded: if no full window fits but the clip
// is at least half a window long, the whole clip becomes the only window.
func SliceWindows(n, winLen, hopLen int) [][2]int {
	if n <= 0 || winLen <= 0 || hopLen <= 0 {
		return nil
	}
	var out [][2]int
	for start := 0; start+winLen <= n; start += hopLen {
		out = append(out, [2]int{start, start + winLen})
	}
	if len(out) == 0 && 2*n >= winLen {
		out = append(out, [2]int{0, n})
	}
	return out
}

func (p *Pipeline) windows(samples []float64, sr int) []Window {
	winLen := int(math.Round(p.cfg.Analysis.WindowS * float64(sr)))
	hopLen := int(math.Round(p.cfg.Analysis.HopS * float64(sr)))
	spans := SliceWindows(len(samples), winLen, hopLen)
	out := make([]Window, len(spans))
	for i, s := range spans {
		out[i] = Window{Index: i, Start: s[0], Samples: samples[s[0]:s[1]]}
	}
	return out
}

var errEmptyDistribution = errors.New("classifier returned an empty distribution")

// NewEstimate turns raw classifier scores into an estimate whose distribution
// sums to 1. Scores with any negative value are treated as logits and passed
// through a softmax; otherwise they are divided by their sum.
func NewEstimate(scores map[string]float64) (EmotionEstimate, error) {
	if len(scores) == 0 {
		return EmotionEstimate{}, errEmptyDistribution
	}
	logits, sum, maxScore := false, 0.0, math.Inf(-1)
	for _, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return EmotionEstimate{}, errors.New("classifier returned a non-finite score")
		}
		if v < 0 {
			logits = true
		}
		sum += v
		maxScore = math.Max(maxScore, v)
	}

	probs := make(map[string]float64, len(scores))
	switch {
	case logits:
		total := 0.0
		for k, v := range scores {
			probs[k] = math.Exp(v - maxScore)
			total += probs[k]
		}
		for k := range probs {
			probs[k] /= total
		}
	case sum > 0:
		for k, v := range scores {
			probs[k] = v / sum
		}
	default:
		return EmotionEstimate{}, errEmptyDistribution
	}

	est := EmotionEstimate{Probabilities: probs}
	for _, label := range sortedKeys(probs) {
		if probs[label] > est.Confidence {
			est.Label, est.Confidence = label, probs[label]
		}
	}
	return est, nil
}

// Aggregate folds the per-window estimates into the clip's dominant emotion.
// Confidences are summed per label over windows with a known label and the
// first label (in window order) to reach the maximum wins. The clip
// confidence is the median of every window's confidence, failed windows
// included as 0.
func Aggregate(outcomes []WindowOutcome) (string, float64) {
	if len(outcomes) == 0 {
		return Unknown, 0
	}
	totals := map[string]float64{}
	var order []string
	confs := make([]float64, len(outcomes))
	for i, o := range outcomes {
		confs[i] = o.Emotion.Confidence
		if o.Err != nil || o.Emotion.Label == "" || o.Emotion.Label == Unknown {
			continue
		}
		if _, seen := totals[o.Emotion.Label]; !seen {
			order = append(order, o.Emotion.Label)
		}
		totals[o.Emotion.Label] += o.Emotion.Confidence
	}

	label, best := Unknown, 0.0
	for _, l := range order {
		if totals[l] > best {
			label, best = l, totals[l]
		}
	}
	return label, features.Median(confs)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
