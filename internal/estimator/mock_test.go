package estimator

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/grass-estimator/pkg/anthropic"
	"github.com/sells-group/grass-estimator/pkg/grassapi"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, contentType string, body []byte) (*grassapi.UploadResponse, error) {
	args := m.Called(ctx, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*grassapi.UploadResponse), args.Error(1)
}

type mockAnthropic struct {
	mock.Mock
}

func (m *mockAnthropic) Describe(ctx context.Context, req anthropic.VisionRequest) (*anthropic.Reply, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.Reply), args.Error(1)
}
