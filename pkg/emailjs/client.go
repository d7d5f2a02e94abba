// Package emailjs sends templated email through the EmailJS REST API.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultBaseURL is the EmailJS REST API root.
const DefaultBaseURL = "https://api.emailjs.com/api/v1.0"

// Client defines the EmailJS operations.
type Client interface {
	// Send renders the configured template with params and delivers it.
	Send(ctx context.Context, params map[string]string) error
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

// WithPrivateKey sets the access token required when the account enforces
// private-key auth for server-side calls.
func WithPrivateKey(key string) Option {
	return func(c *httpClient) {
		c.privateKey = key
	}
}

type httpClient struct {
	serviceID  string
	templateID string
	publicKey  string
	privateKey string
	baseURL    string
	http       *http.Client
}

// NewClient creates an EmailJS client bound to one service and template.
func NewClient(serviceID, templateID, publicKey string, opts ...Option) Client {
	c := &httpClient{
		serviceID:  serviceID,
		templateID: templateID,
		publicKey:  publicKey,
		baseURL:    DefaultBaseURL,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned when EmailJS answers with anything but 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("emailjs: unexpected status %d: %s", e.Code, e.Body)
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

func (c *httpClient) Send(ctx context.Context, params map[string]string) error {
	payload, err := json.Marshal(sendRequest{
		ServiceID:      c.serviceID,
		TemplateID:     c.templateID,
		UserID:         c.publicKey,
		AccessToken:    c.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return eris.Wrap(err, "emailjs: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email/send", bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "emailjs: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "emailjs: send")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return nil
}
