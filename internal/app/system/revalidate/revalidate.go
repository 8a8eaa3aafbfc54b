// internal/app/system/revalidate/revalidate.go

// Package revalidate notifies the frontend cache that a rendered path is
// stale. Invalidation is fire-and-forget: failures are logged and swallowed,
// never surfaced to the operation that triggered them.
package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dalemusser/threadhub/internal/app/system/timeouts"
)

// Client posts invalidation requests to the frontend's revalidate endpoint.
// A nil Client or an empty base URL disables invalidation entirely.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New returns a client for the frontend at baseURL. An empty baseURL yields
// a client whose Invalidate is a no-op.
func New(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeouts.Short()},
		log:     log,
	}
}

// Enabled reports whether a frontend base URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Invalidate asks the frontend to re-render the cached page at path.
func (c *Client) Invalidate(ctx context.Context, path string) {
	if !c.Enabled() {
		return
	}

	body, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		c.log.Warn("revalidate: encode request", zap.String("path", path), zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/revalidate", bytes.NewReader(body))
	if err != nil {
		c.log.Warn("revalidate: build request", zap.String("path", path), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("revalidate: request failed", zap.String("path", path), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("revalidate: unexpected status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
	}
}
