// Package tasktypes holds the task type catalog and the reference parameter
// table of every type.
package tasktypes

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dukex/agroops/pkg/models"
)

// Store is the task type catalog. Parameter tables can be replaced at
// runtime; the set of types is fixed.
type Store struct {
	mu    sync.RWMutex
	types []models.TaskType
}

// NewStore validates the task types and keeps them in catalog order.
func NewStore(types []models.TaskType) (*Store, error) {
	store := &Store{types: make([]models.TaskType, 0, len(types))}

	for _, taskType := range types {
		if err := taskType.Validate(); err != nil {
			return nil, fmt.Errorf("task type %s: %w", taskType.ID, err)
		}

		if store.index(taskType.ID) >= 0 {
			return nil, fmt.Errorf("%w: duplicate task type %q", models.ErrValidationFailed, taskType.ID)
		}

		store.types = append(store.types, taskType.Clone())
	}

	return store, nil
}

// List returns copies of all task types.
func (s *Store) List() []models.TaskType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.TaskType, len(s.types))
	for i, taskType := range s.types {
		list[i] = taskType.Clone()
	}

	return list
}

// Get returns a copy of the task type or an error wrapping models.ErrNotFound.
func (s *Store) Get(id string) (models.TaskType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return models.TaskType{}, fmt.Errorf("task type %w: %s", models.ErrNotFound, id)
	}

	return s.types[i].Clone(), nil
}

// Contains reports whether id names a task type.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.index(id) >= 0
}

// Param returns the reference row key of task type id.
func (s *Store) Param(id, key string) (models.TaskParameter, error) {
	taskType, err := s.Get(id)
	if err != nil {
		return models.TaskParameter{}, err
	}

	param, ok := taskType.Param(key)
	if !ok {
		return models.TaskParameter{}, fmt.Errorf("task parameter %w: %s/%s", models.ErrNotFound, id, key)
	}

	return param, nil
}

// SetParams replaces the parameter table of task type id. An invalid table
// leaves the current one in place.
func (s *Store) SetParams(id string, params []models.TaskParameter) (models.TaskType, error) {
	if err := models.ValidateTaskParams(params); err != nil {
		return models.TaskType{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.TaskType{}, fmt.Errorf("task type %w: %s", models.ErrNotFound, id)
	}

	s.types[i].Params = slices.Clone(params)

	return s.types[i].Clone(), nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.types, func(t models.TaskType) bool { return t.ID == id })
}
