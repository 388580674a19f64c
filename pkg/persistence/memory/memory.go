// Package memory provides a transient in-process persistence implementation.
// State lives only as long as the process.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/persistence"
)

// Persistence implements persistence.Persistence in memory.
type Persistence struct {
	templates *Repository[*models.OperationTemplate]
	crops     *Repository[*models.Crop]
	tasks     *Repository[*models.Task]
}

// NewPersistence creates an empty in-memory store.
func NewPersistence() *Persistence {
	return &Persistence{
		templates: NewRepository(persistence.Templates),
		crops:     NewRepository(persistence.Crops),
		tasks:     NewRepository(persistence.Tasks),
	}
}

func (p *Persistence) TemplateRepository() persistence.TemplateRepository { return p.templates }
func (p *Persistence) CropRepository() persistence.CropRepository         { return p.crops }
func (p *Persistence) TaskRepository() persistence.TaskRepository         { return p.tasks }

// HealthCheck always succeeds.
func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// Repository keeps one record kind in a map guarded by a RWMutex.
type Repository[T any] struct {
	kind  persistence.Kind[T]
	mu    sync.RWMutex
	items map[string]T
}

// NewRepository creates an empty repository for kind.
func NewRepository[T any](kind persistence.Kind[T]) *Repository[T] {
	return &Repository[T]{
		kind:  kind,
		items: make(map[string]T),
	}
}

// GetAll returns copies of every record in the kind's listing order.
func (r *Repository[T]) GetAll(_ context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]T, 0, len(r.items))
	for _, item := range r.items {
		all = append(all, r.kind.Clone(item))
	}

	slices.SortFunc(all, r.kind.Compare)

	return all, nil
}

// GetByID returns a copy of the record.
func (r *Repository[T]) GetByID(_ context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		var zero T

		return zero, persistence.NewRecordError("GetByID", r.kind.Record, id, r.kind.NotFound)
	}

	return r.kind.Clone(item), nil
}

// Save stamps the record and stores a copy of it.
func (r *Repository[T]) Save(_ context.Context, item T) error {
	r.kind.Stamp(item, time.Now().UTC())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.kind.ID(item)] = r.kind.Clone(item)

	return nil
}

// Delete removes the record.
func (r *Repository[T]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return persistence.NewRecordError("Delete", r.kind.Record, id, r.kind.NotFound)
	}

	delete(r.items, id)

	return nil
}
