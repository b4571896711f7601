package clients

import (
	"context"
)

// --- Visualization ---
type TimelineReq struct {
	Timestamps []float64 `json:"timestamps"`
	Clusters   []int     `json:"clusters"`
	Emotions   []string  `json:"emotions,omitempty"`
	OutputDir  string    `json:"output_dir,omitempty"`
}

type TimelineResp struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func (h *HTTP) GenerateTimeline(ctx context.Context, url string, req TimelineReq) (*TimelineResp, error) {
	var out TimelineResp
	if err := h.postJSON(ctx, "viz timeline", url+"/generate-timeline", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
