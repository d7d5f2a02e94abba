package estimator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/grass-estimator/internal/config"
	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/pkg/anthropic"
	"github.com/sells-group/grass-estimator/pkg/grassapi"
)

func TestNew_Upload(t *testing.T) {
	cfg := &config.Config{}
	cfg.Estimator.Backend = "upload"
	cfg.Estimator.BaseURL = "http://localhost:1"
	cfg.Estimator.TimeoutSecs = 5

	s, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Remote{}, s)
}

func TestNew_DefaultBackend(t *testing.T) {
	s, err := New(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &Remote{}, s)
}

func TestNew_AnthropicMissingKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Estimator.Backend = "anthropic"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires anthropic.key")
}

func TestNew_AnthropicWithKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Estimator.Backend = "anthropic"
	cfg.Anthropic.Key = "test-key"

	s, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Vision{}, s)
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Estimator.Backend = "fax"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "fax"`)
}

func TestRemote_Submit(t *testing.T) {
	up := new(mockUploader)
	p := &request.Payload{Body: []byte("body"), ContentType: "multipart/form-data; boundary=b"}
	up.On("Upload", mock.Anything, p.ContentType, p.Body).
		Return(&grassapi.UploadResponse{Result: "1. 80 m²"}, nil)

	got, err := NewRemote(up).Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "1. 80 m²", got)
	up.AssertExpectations(t)
}

func TestRemote_SubmitFailure(t *testing.T) {
	up := new(mockUploader)
	up.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("grassapi: unexpected status 502"))

	_, err := NewRemote(up).Submit(context.Background(), &request.Payload{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSubmissionFailed))
	assert.Contains(t, err.Error(), "502")
}

func TestVision_Submit(t *testing.T) {
	mc := new(mockAnthropic)
	p := &request.Payload{
		Images:    []model.Image{{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte{1, 2}}},
		Reference: &model.ReferenceObject{Name: "door", HeightMeters: 2.1},
	}

	mc.On("Describe", mock.Anything, mock.MatchedBy(func(req anthropic.VisionRequest) bool {
		return len(req.Images) == 1 &&
			req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 256 &&
			req.Temperature != nil && *req.Temperature == 0 &&
			req.Images[0].MediaType == "image/jpeg" &&
			strings.Contains(req.Prompt, "door visible in the photos is 2.1 metres tall") &&
			strings.Contains(req.Instructions, "Moderately overgrown (8–15cm)")
	})).Return(&anthropic.Reply{Text: "1. 95 m²\n2. Weedy\n3. Weedy"}, nil)

	got, err := NewVision(mc, "claude-haiku-4-5-20251001", 0).Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "1. 95 m²\n2. Weedy\n3. Weedy", got)
	mc.AssertExpectations(t)
}

func TestVision_SubmitFailure(t *testing.T) {
	mc := new(mockAnthropic)
	mc.On("Describe", mock.Anything, mock.Anything).Return(nil, errors.New("overloaded"))

	_, err := NewVision(mc, "", 0).Submit(context.Background(), &request.Payload{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSubmissionFailed))
}

func TestUserPrompt_NoReference(t *testing.T) {
	assert.Equal(t, "Estimate the lawn shown in these photos.", userPrompt(nil))
}
