package cmd

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/edmo-voice/cache"
	"github.com/maastricht-university/edmo-voice/clients"
	cfg "github.com/maastricht-university/edmo-voice/config"
	"github.com/maastricht-university/edmo-voice/orchestrator"
	"github.com/maastricht-university/edmo-voice/store"
)

// newTranscriber picks the first configured transcription backend: the ASR
// service, then Google Speech, then Gemini. It returns nil when none is set.
func newTranscriber(ctx context.Context, h *clients.HTTP, c *cfg.Root) (orchestrator.Transcriber, io.Closer) {
	s := c.Services
	switch {
	case s.ASR.URL != "":
		return clients.NewASRService(h, s.ASR.URL), nil
	case s.GoogleSpeech.Enabled:
		g, err := clients.NewGoogleTranscriber(ctx, s.GoogleSpeech.Language)
		if err != nil {
			logrus.WithError(err).Warn("google speech unavailable, continuing without transcription")
			return nil, nil
		}
		return g, g
	case s.Gemini.APIKey != "":
		g, err := clients.NewGeminiTranscriber(ctx, s.Gemini.APIKey, s.Gemini.Model)
		if err != nil {
			logrus.WithError(err).Warn("gemini unavailable, continuing without transcription")
			return nil, nil
		}
		return g, nil
	}
	return nil, nil
}

// newPipeline builds the pipeline and its collaborators from c. The returned
// func releases them.
func newPipeline(ctx context.Context, c *cfg.Root) (*orchestrator.Pipeline, func()) {
	h := clients.NewHTTP()
	log := logrus.StandardLogger()

	results := cache.New[orchestrator.FullResult](c.Cache.Path, cache.WithLogger(log))
	if err := results.Load(); err != nil {
		log.WithError(err).Warn("result cache not loaded, starting empty")
	}

	tr, closer := newTranscriber(ctx, h, c)
	p := orchestrator.NewPipeline(ctx, c, orchestrator.Deps{
		Classifier:  clients.NewEmotionService(h, c.Services.Emotion.URL),
		Embedder:    clients.NewEmbeddingService(h, c.Services.Embedding.URL),
		Transcriber: tr,
		Cache:       results,
		HTTP:        h,
		Log:         log,
	})
	return p, func() {
		if closer != nil {
			closer.Close()
		}
	}
}

// openSink opens the SQLite sink, or returns nil when none is configured.
func openSink(c *cfg.Root) (*store.SQLiteSink, error) {
	if c.Sink.SQLitePath == "" {
		return nil, nil
	}
	return store.NewSQLiteSink(c.Sink.SQLitePath)
}
