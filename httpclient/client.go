package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one sidecar instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the sidecar at baseURL. The timeout bounds a
// whole call including the response body.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured sidecar address.
func (c *Client) BaseURL() string { return c.baseURL }

// Healthy reports whether the sidecar answers its health probe.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
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

// PostMultipart sends a multipart form to path and decodes the JSON
// response into out. A non-2xx status is returned as an error carrying
// the response body text.
func (c *Client) PostMultipart(ctx context.Context, path string, body MultipartBody, out any) error {
	reader, contentType, err := body.encode()
	if err != nil {
		return fmt.Errorf("encode multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sidecar request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sidecar error %s (status %d): %s", path, resp.StatusCode, string(text))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode sidecar response %s: %w", path, err)
	}
	return nil
}
