package workflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/request"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, p *request.Payload) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, to model.ContactProfile, est model.PricedEstimate) error {
	return m.Called(ctx, to, est).Error(0)
}
