// Package request assembles the multipart body sent to the estimation service.
package request

import (
	"bytes"
	"fmt"
	"math"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/grass-estimator/internal/model"
)

// DefaultFileField is the multi-value field every photo is attached under.
const DefaultFileField = "files"

// Reference object part names.
const (
	FieldObjectName  = "object_name"
	FieldKnownHeight = "known_height"
)

// Payload is a ready-to-send submission. Images and Reference are kept
// alongside the encoded body for backends that do not speak multipart.
type Payload struct {
	Body        []byte
	ContentType string
	Images      []model.Image
	Reference   *model.ReferenceObject
}

// Builder encodes selected photos and an optional reference object.
type Builder struct {
	fileField string
}

// NewBuilder creates a Builder. An empty field selects DefaultFileField.
func NewBuilder(fileField string) *Builder {
	if fileField == "" {
		fileField = DefaultFileField
	}
	return &Builder{fileField: fileField}
}

// FileField returns the multipart field photos are attached under.
func (b *Builder) FileField() string {
	return b.fileField
}

// Usable returns ref when both halves of the pair are present and the height
// is a finite positive number, and nil otherwise.
func Usable(ref *model.ReferenceObject) *model.ReferenceObject {
	if ref == nil {
		return nil
	}
	name := strings.TrimSpace(ref.Name)
	h := ref.HeightMeters
	if name == "" || math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return nil
	}
	return &model.ReferenceObject{Name: name, HeightMeters: h}
}

// Build encodes every image under the one file field, then object_name and
// known_height when the reference pair is usable.
func (b *Builder) Build(images []model.Image, ref *model.ReferenceObject) (*Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for i, img := range images {
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("photo-%d", i+1)
		}
		ct := img.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, b.fileField, name))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, eris.Wrapf(err, "request: create part for %s", name)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, eris.Wrapf(err, "request: write part for %s", name)
		}
	}

	usable := Usable(ref)
	if usable != nil {
		if err := w.WriteField(FieldObjectName, usable.Name); err != nil {
			return nil, eris.Wrap(err, "request: write object_name")
		}
		if err := w.WriteField(FieldKnownHeight, strconv.FormatFloat(usable.HeightMeters, 'f', -1, 64)); err != nil {
			return nil, eris.Wrap(err, "request: write known_height")
		}
	}

	if err := w.Close(); err != nil {
		return nil, eris.Wrap(err, "request: close multipart writer")
	}

	return &Payload{
		Body:        buf.Bytes(),
		ContentType: w.FormDataContentType(),
		Images:      images,
		Reference:   usable,
	}, nil
}
