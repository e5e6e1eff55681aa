package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// --- Reports (/reports) ---
type PublishResp struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// PublishReport posts any JSON-encodable report to url+"/reports".
func (h *HTTP) PublishReport(ctx context.Context, url string, report any) (*PublishResp, error) {
	b, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("reports marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(url, "/")+"/reports", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		const maxErr = 4096
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErr))
		return nil, fmt.Errorf("reports %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out PublishResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reports decode: %w", err)
	}
	return &out, nil
}
