package clients

import (
	"context"
)

// --- Emotion (/classify) ---
type EmoResp struct {
	Probabilities map[string]float64 `json:"probabilities"`
}

func (h *HTTP) Emotion(ctx context.Context, url string, samples []float64, sampleRate int) (*EmoResp, error) {
	var out EmoResp
	if err := h.postJSON(ctx, "emotion", url+"/classify", WaveReq{SampleRate: sampleRate, Samples: samples}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmotionService is a speech emotion classifier behind an HTTP endpoint.
type EmotionService struct {
	h   *HTTP
	url string
}

func NewEmotionService(h *HTTP, url string) *EmotionService {
	return &EmotionService{h: h, url: url}
}

// Available reports whether the service answers its health check.
func (s *EmotionService) Available(ctx context.Context) bool {
	if s.url == "" {
		return false
	}
	_, err := s.h.Health(ctx, s.url)
	return err == nil
}

// Classify returns the label distribution for one window.
func (s *EmotionService) Classify(ctx context.Context, samples []float64, sampleRate int) (map[string]float64, error) {
	if s.url == "" {
		return nil, ErrUnavailable
	}
	resp, err := s.h.Emotion(ctx, s.url, samples, sampleRate)
	if err != nil {
		return nil, err
	}
	return resp.Probabilities, nil
}
