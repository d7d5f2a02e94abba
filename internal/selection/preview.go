package selection

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sells-group/grass-estimator/internal/model"
)

// PreviewScheme prefixes every preview handle.
const PreviewScheme = "preview:"

// Previews issues transient display handles for selected images. A handle
// stays resolvable until it is revoked.
type Previews struct {
	mu      sync.RWMutex
	handles map[string]model.Image
}

// NewPreviews creates an empty preview registry.
func NewPreviews() *Previews {
	return &Previews{handles: make(map[string]model.Image)}
}

// Create returns one handle per image, in order.
func (p *Previews) Create(images []model.Image) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	uris := make([]string, len(images))
	for i, img := range images {
		uri := PreviewScheme + uuid.NewString()
		p.handles[uri] = img
		uris[i] = uri
	}
	return uris
}

// Open resolves a handle. The "preview:" prefix is optional.
func (p *Previews) Open(uri string) (model.Image, bool) {
	if !strings.HasPrefix(uri, PreviewScheme) {
		uri = PreviewScheme + uri
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	img, ok := p.handles[uri]
	return img, ok
}

// Revoke invalidates the given handles. Unknown handles are ignored.
func (p *Previews) Revoke(uris ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, uri := range uris {
		delete(p.handles, uri)
	}
}

// RevokeAll invalidates every outstanding handle.
func (p *Previews) RevokeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.handles)
}

// Len reports the number of live handles.
func (p *Previews) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handles)
}
