// Package camera talks to a network camera over its plain HTTP interface:
// a /capture endpoint returning one JPEG frame, a /status endpoint for
// connectivity checks and a /stream endpoint serving MJPEG.
package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
)

// Responses smaller than this are truncated or error pages, not frames.
const minImageSize = 1000

// Client captures snapshots from the camera with bounded retries.
type Client struct {
	baseURL    string
	retryCount int
	retryDelay time.Duration
	http       *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.CameraURL, "/"),
		retryCount: cfg.CameraRetryCount,
		retryDelay: cfg.CameraRetryDelay,
		http:       &http.Client{Timeout: cfg.CameraTimeout},
	}
}

// Capture fetches one JPEG snapshot, retrying up to the configured count.
// Undersized payloads are treated as failures.
func (c *Client) Capture(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryCount; attempt++ {
		data, err := c.captureOnce(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", c.retryCount).
			Msg("Camera capture attempt failed")

		if attempt < c.retryCount {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("capture failed after %d attempts: %w", c.retryCount, lastErr)
}

func (c *Client) captureOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/capture", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) <= minImageSize {
		return nil, fmt.Errorf("undersized payload: %d bytes", len(data))
	}
	return data, nil
}

// Probe tests camera connectivity with a short timeout.
func (c *Client) Probe() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// StreamURL returns the camera's MJPEG stream endpoint.
func (c *Client) StreamURL() string {
	return c.baseURL + "/stream"
}
