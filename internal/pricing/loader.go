package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["pricePerM2"],
	"properties": {
		"pricePerM2": {"type": "number", "minimum": 0}
	}
}`

var compiledSchema = jsonschema.MustCompileString("pricing.schema.json", documentSchema)

// Document is the pricing resource: {"pricePerM2": number}.
type Document struct {
	PricePerM2 float64 `json:"pricePerM2"`
}

// Loader fetches the per-square-metre rate.
type Loader interface {
	Load(ctx context.Context) (float64, error)
}

// Option configures a DocumentLoader.
type Option func(*DocumentLoader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *DocumentLoader) {
		l.http = hc
	}
}

// DocumentLoader reads the pricing document from an http(s) URL or a local
// path (a "file://" prefix is accepted).
type DocumentLoader struct {
	source string
	http   *http.Client
}

// NewLoader creates a DocumentLoader for source.
func NewLoader(source string, opts ...Option) *DocumentLoader {
	l := &DocumentLoader{
		source: source,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches, validates and decodes the document.
func (l *DocumentLoader) Load(ctx context.Context) (float64, error) {
	if l.source == "" {
		return 0, eris.New("pricing: no source configured")
	}

	body, err := l.read(ctx)
	if err != nil {
		return 0, err
	}
	doc, err := Decode(body)
	if err != nil {
		return 0, err
	}
	return doc.PricePerM2, nil
}

func (l *DocumentLoader) read(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
		if err != nil {
			return nil, eris.Wrap(err, "pricing: create request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := l.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "pricing: fetch")
		}
		defer resp.Body.Close() //nolint:errcheck

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "pricing: read body")
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("pricing: unexpected status %d: %s", resp.StatusCode, string(body))
		}
		return body, nil
	}

	path := strings.TrimPrefix(l.source, "file://")
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pricing: read %s", path)
	}
	return body, nil
}

// Decode validates body against the document schema and decodes it.
func Decode(body []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, eris.Wrap(err, "pricing: body is not valid JSON")
	}
	if err := compiledSchema.Validate(v); err != nil {
		return nil, eris.Wrap(err, "pricing: schema validation failed")
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, eris.Wrap(err, "pricing: unmarshal document")
	}
	return &doc, nil
}
