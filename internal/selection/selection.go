// Package selection enforces the photo-count constraint and hands out
// revocable preview handles for selected photos.
package selection

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/grass-estimator/internal/model"
)

// MaxImages is the most photos one estimation accepts.
const MaxImages = 3

// Select keeps the first MaxImages files in offered order. Excess files are
// dropped without error; an empty selection is valid here.
func Select(files []model.Image) []model.Image {
	n := min(len(files), MaxImages)
	out := make([]model.Image, n)
	copy(out, files[:n])
	return out
}

// Open reads photos from disk concurrently, preserving path order. Only the
// first MaxImages paths are read.
func Open(ctx context.Context, paths []string) ([]model.Image, error) {
	if len(paths) > MaxImages {
		paths = paths[:MaxImages]
	}

	images := make([]model.Image, len(paths))
	g, _ := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(p)
			if err != nil {
				return eris.Wrapf(err, "selection: read %s", p)
			}
			img, err := FromBytes(filepath.Base(p), "", data)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// FromBytes wraps uploaded bytes as an Image. A declared image/* type is kept;
// anything else is replaced by the sniffed type, which must be an image.
func FromBytes(name, declared string, data []byte) (model.Image, error) {
	ct := declared
	if !strings.HasPrefix(ct, "image/") {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return model.Image{}, eris.Errorf("selection: %s is not an image (%s)", name, ct)
	}
	return model.Image{Name: name, ContentType: ct, Data: data}, nil
}
