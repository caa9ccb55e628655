package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ShayCichocki/hive/pkg/models"
)

// maxResponseBytes caps how much of an endpoint's reply is read.
const maxResponseBytes = 4 << 20

// HTTPJSON forwards the subtask payload as a JSON POST body to an
// external endpoint and returns the decoded JSON object reply.
type HTTPJSON struct {
	name     string
	caps     models.CapabilitySet
	endpoint string
	client   *http.Client
}

// NewHTTPJSON creates an HTTPJSON executor for the given endpoint.
// A zero timeout defaults to 30s.
func NewHTTPJSON(name string, caps models.CapabilitySet, endpoint string, timeout time.Duration) *HTTPJSON {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPJSON{
		name:     name,
		caps:     caps,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the executor identifier.
func (h *HTTPJSON) Name() string { return h.name }

// Capabilities returns the declared capability set.
func (h *HTTPJSON) Capabilities() models.CapabilitySet { return h.caps }

// Execute POSTs the payload and decodes the JSON object response.
// Non-2xx statuses and non-object replies are errors.
func (h *HTTPJSON) Execute(ctx context.Context, payload models.Payload) (models.Payload, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to %s: %w", h.endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("endpoint returned %s: %s", resp.Status, truncate(string(data), 200))
	}

	var result models.Payload
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return result, nil
}

// truncate shortens s to at most n runes for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
