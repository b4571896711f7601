package clients

import (
	"context"
	"sync"
)

// --- Embedding (/embed) ---
type EmbedResp struct {
	Embedding []float64 `json:"embedding"`
	Model     string    `json:"model"`
}

func (h *HTTP) Embed(ctx context.Context, url string, samples []float64, sampleRate int) (*EmbedResp, error) {
	var out EmbedResp
	if err := h.postJSON(ctx, "embed", url+"/embed", WaveReq{SampleRate: sampleRate, Samples: samples}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmbeddingService returns mean-pooled speech embeddings from an HTTP
// endpoint. The model name is learned from the health check or the first
// embedding response.
type EmbeddingService struct {
	h   *HTTP
	url string

	mu    sync.Mutex
	model string
}

func NewEmbeddingService(h *HTTP, url string) *EmbeddingService {
	return &EmbeddingService{h: h, url: url}
}

func (s *EmbeddingService) Available(ctx context.Context) bool {
	if s.url == "" {
		return false
	}
	hr, err := s.h.Health(ctx, s.url)
	if err != nil {
		return false
	}
	s.setModel(hr.Model)
	return true
}

func (s *EmbeddingService) Embed(ctx context.Context, samples []float64, sampleRate int) ([]float64, error) {
	if s.url == "" {
		return nil, ErrUnavailable
	}
	resp, err := s.h.Embed(ctx, s.url, samples, sampleRate)
	if err != nil {
		return nil, err
	}
	s.setModel(resp.Model)
	return resp.Embedding, nil
}

// Model names the embedding model, or the service URL if it never said.
func (s *EmbeddingService) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == "" {
		return s.url
	}
	return s.model
}

func (s *EmbeddingService) setModel(m string) {
	if m == "" {
		return
	}
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
}
