package mocks

import (
	"context"

	"github.com/dukex/agroops/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockReadingsSource is a mock implementation of readings.Source interface.
type MockReadingsSource struct {
	mock.Mock
}

func (m *MockReadingsSource) Get(ctx context.Context, fieldID string) (models.FieldReading, error) {
	args := m.Called(ctx, fieldID)

	return args.Get(0).(models.FieldReading), args.Error(1)
}

func (m *MockReadingsSource) List(ctx context.Context) ([]models.FieldReading, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.FieldReading), args.Error(1)
}

func (m *MockReadingsSource) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockReadingsSource) Close() error {
	args := m.Called()

	return args.Error(0)
}
