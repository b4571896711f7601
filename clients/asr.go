package clients

import (
	"context"
	"strings"
)

// --- ASR (/transcribe) ---
type ASRResp struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

func (h *HTTP) ASR(ctx context.Context, url string, samples []float64, sampleRate int) (*ASRResp, error) {
	var out ASRResp
	if err := h.postJSON(ctx, "asr", url+"/transcribe", WaveReq{SampleRate: sampleRate, Samples: samples}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ASRService transcribes windows and chunks through the ASR HTTP service.
type ASRService struct {
	h   *HTTP
	url string
}

func NewASRService(h *HTTP, url string) *ASRService {
	return &ASRService{h: h, url: url}
}

func (s *ASRService) Transcribe(ctx context.Context, samples []float64, sampleRate int) (string, error) {
	if s.url == "" {
		return "", ErrUnavailable
	}
	resp, err := s.h.ASR(ctx, s.url, samples, sampleRate)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
