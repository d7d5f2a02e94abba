// Package places provides service-address suggestions via Google Places
// Autocomplete.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Places Autocomplete endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place/autocomplete/json"

// Client suggests addresses for partial input.
type Client interface {
	Suggest(ctx context.Context, input string) ([]Suggestion, error)
}

// Suggestion is one autocomplete prediction.
type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"placeId"`
}

// StatusError reports a non-200 HTTP answer (Code) or a non-OK API status
// such as REQUEST_DENIED (Status).
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("places: status %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("places: returned status %d", e.Code)
}

// Transient reports whether repeating the lookup may succeed.
func (e *StatusError) Transient() bool {
	switch e.Status {
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return true
	case "":
		return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
	}
	return false
}

// Option configures the client.
type Option func(*client)

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithCountry restricts predictions to an ISO 3166-1 alpha-2 country.
func WithCountry(cc string) Option {
	return func(c *client) {
		c.country = strings.ToLower(cc)
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type client struct {
	apiKey     string
	baseURL    string
	country    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Places client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		country:    "au",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		Description string `json:"description"`
		PlaceID     string `json:"place_id"`
	} `json:"predictions"`
}

// Suggest returns predictions for input. Blank input returns nothing without
// calling the API.
func (c *client) Suggest(ctx context.Context, input string) ([]Suggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, eris.New("places: api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	params := url.Values{
		"input": {input},
		"types": {"address"},
		"key":   {c.apiKey},
	}
	if c.country != "" {
		params.Set("components", "country:"+c.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read body")
	}

	var ac autocompleteResponse
	if err := json.Unmarshal(body, &ac); err != nil {
		return nil, eris.Wrap(err, "places: parse response")
	}

	switch ac.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []Suggestion{}, nil
	default:
		return nil, &StatusError{Status: ac.Status, Message: ac.ErrorMessage}
	}

	out := make([]Suggestion, 0, len(ac.Predictions))
	for _, p := range ac.Predictions {
		out = append(out, Suggestion{Description: p.Description, PlaceID: p.PlaceID})
	}
	return out, nil
}
