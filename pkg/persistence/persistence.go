// Package persistence provides the storage abstraction for operation
// templates, crops and tasks.
package persistence

import (
	"context"

	"github.com/dukex/agroops/pkg/models"
)

// Persistence bundles the repositories of one storage backend.
type Persistence interface {
	TemplateRepository() TemplateRepository
	CropRepository() CropRepository
	TaskRepository() TaskRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// TemplateRepository stores operation templates. Implementations hand out
// copies: mutating a returned template never changes stored state.
type TemplateRepository interface {
	GetAll(ctx context.Context) ([]*models.OperationTemplate, error)
	GetByID(ctx context.Context, id string) (*models.OperationTemplate, error)
	Save(ctx context.Context, template *models.OperationTemplate) error
	Delete(ctx context.Context, id string) error
}

// CropRepository stores crops together with their attached operation instances.
type CropRepository interface {
	GetAll(ctx context.Context) ([]*models.Crop, error)
	GetByID(ctx context.Context, id string) (*models.Crop, error)
	Save(ctx context.Context, crop *models.Crop) error
	Delete(ctx context.Context, id string) error
}

// TaskRepository stores tasks.
type TaskRepository interface {
	GetAll(ctx context.Context) ([]*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Save(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}
