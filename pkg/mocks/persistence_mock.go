package mocks

import (
	"context"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence
// interface handing out the mock repositories it holds.
type MockPersistence struct {
	mock.Mock

	Templates *MockTemplateRepository
	Crops     *MockCropRepository
	Tasks     *MockTaskRepository
}

// NewMockPersistence returns a persistence with empty mock repositories.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Templates: &MockTemplateRepository{},
		Crops:     &MockCropRepository{},
		Tasks:     &MockTaskRepository{},
	}
}

//nolint:ireturn
func (m *MockPersistence) TemplateRepository() persistence.TemplateRepository {
	return m.Templates
}

//nolint:ireturn
func (m *MockPersistence) CropRepository() persistence.CropRepository {
	return m.Crops
}

//nolint:ireturn
func (m *MockPersistence) TaskRepository() persistence.TaskRepository {
	return m.Tasks
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockTemplateRepository is a mock implementation of persistence.TemplateRepository interface.
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) GetAll(ctx context.Context) ([]*models.OperationTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.OperationTemplate), args.Error(1)
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, id string) (*models.OperationTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.OperationTemplate), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, template *models.OperationTemplate) error {
	args := m.Called(ctx, template)

	return args.Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockCropRepository is a mock implementation of persistence.CropRepository interface.
type MockCropRepository struct {
	mock.Mock
}

func (m *MockCropRepository) GetAll(ctx context.Context) ([]*models.Crop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Crop), args.Error(1)
}

func (m *MockCropRepository) GetByID(ctx context.Context, id string) (*models.Crop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Crop), args.Error(1)
}

func (m *MockCropRepository) Save(ctx context.Context, crop *models.Crop) error {
	args := m.Called(ctx, crop)

	return args.Error(0)
}

func (m *MockCropRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockTaskRepository is a mock implementation of persistence.TaskRepository interface.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) GetAll(ctx context.Context) ([]*models.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) Save(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)

	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}
