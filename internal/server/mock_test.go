package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/pkg/places"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, p *request.Payload) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

type mockPlaces struct {
	mock.Mock
}

func (m *mockPlaces) Suggest(ctx context.Context, input string) ([]places.Suggestion, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]places.Suggestion), args.Error(1)
}
