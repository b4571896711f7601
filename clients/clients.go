package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable is returned by a service client whose URL is not configured.
var ErrUnavailable = errors.New("service not configured")

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return &HTTP{c: &http.Client{Timeout: 60 * time.Second}} }

// NewHTTPWith wraps an existing client, e.g. one from httptest.
func NewHTTPWith(c *http.Client) *HTTP { return &HTTP{c: c} }

// WaveReq is the body every audio model service accepts.
type WaveReq struct {
	SampleRate int       `json:"sample_rate"`
	Samples    []float64 `json:"samples"`
}

// HealthResp is returned by GET /health on the model services.
type HealthResp struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

func (h *HTTP) postJSON(ctx context.Context, name, url string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s encode: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s", name, resp.Status, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", name, err)
	}
	return nil
}

// Health queries url+"/health".
func (h *HTTP) Health(ctx context.Context, url string) (*HealthResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("health %s: %s", resp.Status, string(body))
	}
	var out HealthResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("health decode: %w", err)
	}
	return &out, nil
}
