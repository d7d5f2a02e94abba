// Package grassapi is a client for the grass-area analysis service, which
// accepts multipart photo uploads and answers with a three-line text result.
package grassapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultBaseURL is the hosted analysis service.
const DefaultBaseURL = "https://grass-area-api.onrender.com"

// Client defines the analysis service operations.
type Client interface {
	// Upload posts an encoded multipart body to /upload. It makes a single
	// attempt and never retries.
	Upload(ctx context.Context, contentType string, body []byte) (*UploadResponse, error)
}

// UploadResponse is the service's JSON answer.
type UploadResponse struct {
	Result string `json:"result"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout bounds each upload. Zero leaves uploads unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.timeout = d
	}
}

type httpClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a new analysis service client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Upload(ctx context.Context, contentType string, body []byte) (*UploadResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "grassapi: create request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "grassapi: upload")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "grassapi: read body")
	}

	zap.L().Debug("grassapi: upload complete",
		zap.Int("status", resp.StatusCode),
		zap.Int("request_bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("grassapi: unexpected status %d: %s", resp.StatusCode, truncate(string(respBody), 256))
	}

	var raw struct {
		Result *string `json:"result"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, eris.Wrap(err, "grassapi: decode response")
	}
	if raw.Result == nil {
		return nil, eris.New("grassapi: response has no result")
	}

	return &UploadResponse{Result: *raw.Result}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
