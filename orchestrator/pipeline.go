package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/edmo-voice/audio"
	"github.com/maastricht-university/edmo-voice/cache"
	"github.com/maastricht-university/edmo-voice/clients"
	cfg "github.com/maastricht-university/edmo-voice/config"
	"github.com/maastricht-university/edmo-voice/features"
)

// ErrLoad wraps every failure to read or decode the input audio.
var ErrLoad = errors.New("load audio")

var errEmbeddingShape = errors.New("embeddings differ in dimension")

// Deps are the collaborators of a Pipeline. Transcriber, Cache and HTTP are
// optional.
type Deps struct {
	Classifier  EmotionClassifier
	Embedder    EmbeddingExtractor
	Transcriber Transcriber
	Cache       *cache.Cache[FullResult]
	HTTP        *clients.HTTP
	Log         logrus.FieldLogger
}

type Pipeline struct {
	cfg         *cfg.Root
	http        *clients.HTTP
	log         logrus.FieldLogger
	classifier  EmotionClassifier
	embedder    EmbeddingExtractor
	transcriber Transcriber
	cache       *cache.Cache[FullResult]
	degraded    bool
}

// NewPipeline probes the model capabilities once. If either is missing or
// unhealthy the pipeline runs in degraded heuristic mode for its lifetime.
func NewPipeline(ctx context.Context, c *cfg.Root, d Deps) *Pipeline {
	p := &Pipeline{
		cfg:         c,
		http:        d.HTTP,
		log:         d.Log,
		classifier:  d.Classifier,
		embedder:    d.Embedder,
		transcriber: d.Transcriber,
		cache:       d.Cache,
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	if p.http == nil {
		p.http = clients.NewHTTP()
	}
	if p.cache == nil {
		p.cache = cache.NewMemory[FullResult](cache.WithLogger(p.log))
	}

	switch {
	case d.Classifier == nil || !d.Classifier.Available(ctx):
		p.degraded = true
		p.log.Warn("emotion classifier unavailable, falling back to basic audio features")
	case d.Embedder == nil || !d.Embedder.Available(ctx):
		p.degraded = true
		p.log.Warn("embedding extractor unavailable, falling back to basic audio features")
	}
	return p
}

// Degraded reports whether the pipeline runs the heuristic analysis only.
func (p *Pipeline) Degraded() bool { return p.degraded }

// Analyze loads the clip at path and analyzes it. Only a load failure is
// returned as an error; capability failures produce a degraded result.
func (p *Pipeline) Analyze(ctx context.Context, path string) (Result, error) {
	w, err := audio.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLoad, path, err)
	}
	return p.AnalyzeWaveform(ctx, w)
}

// AnalyzeWaveform analyzes an already decoded clip. Full results are cached by
// the hash of the processed samples; identical content is analyzed once.
func (p *Pipeline) AnalyzeWaveform(ctx context.Context, w audio.Waveform) (Result, error) {
	if p.degraded {
		r := p.heuristic(w)
		p.log.WithFields(logrus.Fields{
			"method":   r.Method(),
			"emotion":  r.Emotion,
			"duration": r.Features.Duration,
		}).Info("analysis finished")
		return r, nil
	}

	proc := w
	if p.cfg.Analysis.Denoise {
		proc = w.WithSamples(features.ReduceNoise(w.Samples, features.DefaultGateOptions()))
	}
	proc = proc.Normalize()

	hash, err := audio.Hash(proc.Samples, p.cfg.Cache.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	log := p.log.WithField("hash", hash)

	// Callers waiting on the same hash share one computation, so it must not
	// inherit any single caller's cancellation. Per-call timeouts bound it.
	shared := context.WithoutCancel(ctx)
	start := time.Now()
	res, hit, err := p.cache.Do(hash, func() (FullResult, error) {
		return p.full(shared, proc, hash, log)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"cached":   hit,
		"emotion":  res.Emotion.Label,
		"windows":  len(res.Timeline),
		"duration": res.Metadata.Duration,
		"took":     time.Since(start).Round(time.Millisecond),
	}).Info("analysis finished")

	out := res.clone()
	if !hit {
		p.visualize(ctx, &out, log)
	}
	return &out, nil
}

func (p *Pipeline) full(ctx context.Context, w audio.Waveform, hash string, log logrus.FieldLogger) (FullResult, error) {
	summary, err := features.Extract(ctx, w.Samples, w.SampleRate, p.featureOptions())
	if err != nil {
		return FullResult{}, err
	}

	windows := p.windows(w.Samples, w.SampleRate)
	if p.transcriber == nil && len(windows) > 0 {
		log.Info("no transcriber, vocal pressure counts one word per window")
	}
	outcomes := p.runWindows(ctx, windows, w.SampleRate, log)
	if err := ctx.Err(); err != nil {
		return FullResult{}, err
	}

	label, confidence := Aggregate(outcomes)
	clusters := p.cluster(outcomes, log)

	pressures := make([]float64, len(outcomes))
	timeline := make([]TimelineEntry, len(outcomes))
	failed := 0
	for i, o := range outcomes {
		if o.Err != nil {
			failed++
		}
		pressures[i] = o.VocalPressure
		timeline[i] = TimelineEntry{
			Start:         o.Start,
			Emotion:       o.Emotion.Label,
			Confidence:    o.Emotion.Confidence,
			VocalPressure: o.VocalPressure,
		}
		if clusters != nil {
			id := clusters[i]
			timeline[i].Cluster = &id
		}
	}
	if failed > 0 {
		log.WithField("failed", failed).Warn("some windows could not be classified")
	}

	return FullResult{
		AnalysisMethod: MethodFull,
		Emotion:        ClipEmotion{Label: label, Confidence: confidence},
		Features: FeatureSummary{
			PitchMean:           summary.Pitch.Mean,
			PitchStd:            summary.Pitch.Std,
			EnergyMean:          summary.Energy.Mean,
			SpeechSilenceRatio:  summary.SilenceRatio,
			BreathRate:          summary.Breathing.Rate,
			VocalPressureMedian: features.Median(pressures),
		},
		Timeline: timeline,
		Metadata: Metadata{
			Duration:       w.Duration(),
			Hash:           hash,
			WindowS:        p.cfg.Analysis.WindowS,
			HopS:           p.cfg.Analysis.HopS,
			EmbeddingModel: p.embedder.Model(),
		},
	}, nil
}

func (p *Pipeline) featureOptions() features.Options {
	opt := features.DefaultOptions()
	a := p.cfg.Analysis
	opt.Silence.FrameMs = a.FrameMs
	opt.Silence.Threshold = a.SilenceThreshold
	opt.Pitch.MinHz, opt.Pitch.MaxHz = a.PitchMinHz, a.PitchMaxHz
	return opt
}

// runWindows runs the per-window adapter on up to analysis.workers windows at
// a time. Outcomes are stored by window index so order never depends on
// completion order.
func (p *Pipeline) runWindows(ctx context.Context, windows []Window, sr int, log logrus.FieldLogger) []WindowOutcome {
	out := make([]WindowOutcome, len(windows))
	var noEmbed atomic.Bool
	var g errgroup.Group
	g.SetLimit(max(1, p.cfg.Analysis.Workers))
	for i := range windows {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out[i] = p.analyzeWindow(ctx, windows[i], sr, &noEmbed, log)
			return nil
		})
	}
	g.Wait()
	return out
}

func (p *Pipeline) analyzeWindow(ctx context.Context, win Window, sr int, noEmbed *atomic.Bool, log logrus.FieldLogger) WindowOutcome {
	o := WindowOutcome{Index: win.Index, Start: float64(win.Start) / float64(sr)}
	wlog := log.WithField("window", win.Index)

	o.Emotion, o.Err = p.classify(ctx, win.Samples, sr)
	if o.Err != nil {
		wlog.WithError(o.Err).Warn("emotion classification failed")
		o.Emotion = EmotionEstimate{Label: Unknown, Probabilities: map[string]float64{}}
	}

	o.VocalPressure = features.RMS(win.Samples) / float64(p.words(ctx, win.Samples, sr, wlog))

	if !noEmbed.Load() {
		cctx, cancel := p.callContext(ctx)
		o.Embedding, o.EmbedErr = p.embedder.Embed(cctx, win.Samples, sr)
		cancel()
		if o.EmbedErr != nil {
			if !noEmbed.Swap(true) {
				wlog.WithError(o.EmbedErr).Warn("embedding failed, clustering disabled for this clip")
			}
		}
	}
	return o
}

func (p *Pipeline) classify(ctx context.Context, samples []float64, sr int) (EmotionEstimate, error) {
	cctx, cancel := p.callContext(ctx)
	defer cancel()
	scores, err := p.classifier.Classify(cctx, audio.NormalizeSamples(samples), sr)
	if err != nil {
		return EmotionEstimate{}, err
	}
	return NewEstimate(scores)
}

// words counts the transcript words of a window, at least one.
func (p *Pipeline) words(ctx context.Context, samples []float64, sr int, log logrus.FieldLogger) int {
	if p.transcriber == nil {
		return 1
	}
	cctx, cancel := p.callContext(ctx)
	defer cancel()
	text, err := p.transcriber.Transcribe(cctx, samples, sr)
	if err != nil {
		log.WithError(err).Debug("transcription failed, counting one word")
		return 1
	}
	return max(1, len(strings.Fields(text)))
}

func (p *Pipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := p.cfg.Analysis.CallTimeout; d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// cluster returns one cluster id per window, or nil when any window lacks a
// usable embedding.
func (p *Pipeline) cluster(outcomes []WindowOutcome, log logrus.FieldLogger) []int {
	if len(outcomes) == 0 {
		return nil
	}
	points := make([][]float64, len(outcomes))
	for i, o := range outcomes {
		if o.EmbedErr != nil || len(o.Embedding) == 0 {
			return nil
		}
		if len(o.Embedding) != len(outcomes[0].Embedding) {
			log.WithError(errEmbeddingShape).Warn("clustering skipped")
			return nil
		}
		points[i] = o.Embedding
	}
	k := min(p.cfg.Analysis.MaxClusters, len(points))
	return KMeans(points, k, p.cfg.Analysis.Seed)
}

// visualize posts the cluster timeline to the visualization service when one
// is configured. Failures are only logged.
func (p *Pipeline) visualize(ctx context.Context, r *FullResult, log logrus.FieldLogger) {
	url := p.cfg.Services.Visualization.URL
	if url == "" || len(r.Timeline) == 0 || r.Timeline[0].Cluster == nil {
		return
	}
	req := clients.TimelineReq{OutputDir: p.cfg.Paths.Outputs}
	for _, e := range r.Timeline {
		req.Timestamps = append(req.Timestamps, e.Start)
		req.Clusters = append(req.Clusters, *e.Cluster)
		req.Emotions = append(req.Emotions, e.Emotion)
	}
	resp, err := p.http.GenerateTimeline(ctx, url, req)
	if err != nil {
		log.WithError(err).Warn("timeline visualization failed")
		return
	}
	log.WithField("path", resp.Path).Info("timeline visualization written")
}
