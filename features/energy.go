package features

// EnergyOptions sets the sliding sum-of-squares frame.
type EnergyOptions struct {
	FrameLength int
	HopLength   int
}

func DefaultEnergyOptions() EnergyOptions {
	return EnergyOptions{FrameLength: 2048, HopLength: 512}
}

type EnergySummary struct {
	Mean float64 `json:"mean_energy"`
	Std  float64 `json:"energy_std"`
	Max  float64 `json:"max_energy"`
	Min  float64 `json:"min_energy"`
}

// EnergyCurve returns the sum of squares of each frame starting every
// HopLength samples; frames near the end are truncated, not padded. The curve
// is scaled so its maximum is 1 unless it is all zero.
func EnergyCurve(samples []float64, opt EnergyOptions) []float64 {
	hop := max(opt.HopLength, 1)
	var curve []float64
	peak := 0.0
	for start := 0; start < len(samples); start += hop {
		end := min(start+opt.FrameLength, len(samples))
		e := 0.0
		for _, s := range samples[start:end] {
			e += s * s
		}
		curve = append(curve, e)
		peak = max(peak, e)
	}
	if peak > 0 {
		for i := range curve {
			curve[i] /= peak
		}
	}
	return curve
}

func AnalyzeEnergy(samples []float64, opt EnergyOptions) EnergySummary {
	curve := EnergyCurve(samples, opt)
	if len(curve) == 0 {
		return EnergySummary{}
	}
	mean, std := meanStd(curve)
	lo, hi := span(curve)
	return EnergySummary{Mean: mean, Std: std, Max: hi, Min: lo}
}
