package estimator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/pkg/anthropic"
)

const defaultVisionModel = "claude-sonnet-4-5-20250929"

// Vision asks a multimodal model for the same three-line answer the upload
// service produces.
type Vision struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewVision creates a Vision submitter. Empty model and zero maxTokens use
// defaults.
func NewVision(client anthropic.Client, model string, maxTokens int64) *Vision {
	if model == "" {
		model = defaultVisionModel
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}
	return &Vision{client: client, model: model, maxTokens: maxTokens}
}

// Submit implements Submitter.
func (v *Vision) Submit(ctx context.Context, p *request.Payload) (string, error) {
	images := make([]anthropic.Image, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, anthropic.Image{MediaType: img.ContentType, Data: img.Data})
	}

	temp := 0.0
	reply, err := v.client.Describe(ctx, anthropic.VisionRequest{
		Model:        v.model,
		MaxTokens:    v.maxTokens,
		Temperature:  &temp,
		Instructions: systemPrompt(),
		Prompt:       userPrompt(p.Reference),
		Images:       images,
	})
	if err != nil {
		return "", failed(err, "vision")
	}
	reply.Usage.Log(v.model, "estimate")

	return reply.Text, nil
}

func systemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You estimate lawn areas from photos. Reply with exactly three numbered lines and nothing else.\n")
	sb.WriteString("1. The visible grass area, starting with a number in square metres (for example \"1. Approx 120.5 m²\").\n")
	sb.WriteString("2. The grass length, using exactly one of: ")
	sb.WriteString(strings.Join(model.LengthBuckets, "; "))
	sb.WriteString(".\n3. The lawn condition, using exactly one of: ")
	sb.WriteString(strings.Join(model.ConditionBuckets, "; "))
	sb.WriteString(".")
	return sb.String()
}

func userPrompt(ref *model.ReferenceObject) string {
	if ref == nil {
		return "Estimate the lawn shown in these photos."
	}
	return fmt.Sprintf("Estimate the lawn shown in these photos. For scale, the %s visible in the photos is %s metres tall.",
		ref.Name, strconv.FormatFloat(ref.HeightMeters, 'f', -1, 64))
}
