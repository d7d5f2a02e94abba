// Package anthropic asks a Claude vision model about a set of photos.
package anthropic

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// Client describes photos with a single Messages API call.
type Client interface {
	Describe(ctx context.Context, req VisionRequest) (*Reply, error)
}

// VisionRequest is one user turn: the photos followed by a text prompt.
type VisionRequest struct {
	Model        string
	MaxTokens    int64
	Temperature  *float64
	Instructions string // system prompt, omitted when empty
	Prompt       string
	Images       []Image
}

// Image is a raw photo sent inline as base64.
type Image struct {
	MediaType string
	Data      []byte
}

// Reply is the model's answer with its text blocks joined.
type Reply struct {
	ID         string
	Model      string
	StopReason string
	Text       string
	Usage      Usage
}

// Option configures the SDK client.
type Option func(*[]option.RequestOption)

// WithBaseURL points the client at another endpoint (for testing).
func WithBaseURL(url string) Option {
	return func(o *[]option.RequestOption) {
		*o = append(*o, option.WithBaseURL(url))
	}
}

// WithMaxRetries overrides the SDK's retry count.
func WithMaxRetries(n int) Option {
	return func(o *[]option.RequestOption) {
		*o = append(*o, option.WithMaxRetries(n))
	}
}

type sdkClient struct {
	client sdk.Client
}

// NewClient creates a Client backed by anthropic-sdk-go.
func NewClient(apiKey string, opts ...Option) Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(&reqOpts)
	}
	return &sdkClient{client: sdk.NewClient(reqOpts...)}
}

func (c *sdkClient) Describe(ctx context.Context, req VisionRequest) (*Reply, error) {
	msg, err := c.client.Messages.New(ctx, buildParams(req))
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: describe photos")
	}
	return replyFrom(msg), nil
}
