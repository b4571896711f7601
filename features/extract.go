package features

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Options bundles the settings of every full-clip extractor.
type Options struct {
	Silence SilenceOptions
	Pitch   PitchOptions
	Energy  EnergyOptions
}

func DefaultOptions() Options {
	return Options{
		Silence: DefaultSilenceOptions(),
		Pitch:   DefaultPitchOptions(),
		Energy:  DefaultEnergyOptions(),
	}
}

// Summary is the output of every full-clip extractor.
type Summary struct {
	SilenceRatio float64
	Pitch        PitchSummary
	Energy       EnergySummary
	Breathing    BreathingSummary
}

// Extract runs the silence, pitch, energy and breathing analyzers
// concurrently. They share nothing but the read-only sample slice.
func Extract(ctx context.Context, samples []float64, sr int, opt Options) (Summary, error) {
	var s Summary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		silent, _ := DetectSilence(samples, sr, opt.Silence)
		s.SilenceRatio = SilenceRatio(silent)
		return ctx.Err()
	})
	g.Go(func() error {
		s.Pitch = AnalyzePitch(samples, sr, opt.Pitch)
		return ctx.Err()
	})
	g.Go(func() error {
		s.Energy = AnalyzeEnergy(samples, opt.Energy)
		return ctx.Err()
	})
	g.Go(func() error {
		s.Breathing = AnalyzeBreathing(samples, sr)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return s, nil
}
