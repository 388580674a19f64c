package readings

import (
	"context"
	"fmt"
	"sync"

	"github.com/dukex/agroops/pkg/models"
)

// Static serves a fixed snapshot, typically the catalog's readings.
type Static struct {
	mu       sync.RWMutex
	order    []string
	readings map[string]models.FieldReading
}

// NewStatic builds a source over readings. Duplicate field ids are rejected.
func NewStatic(readings []models.FieldReading) (*Static, error) {
	static := &Static{readings: make(map[string]models.FieldReading, len(readings))}

	for _, reading := range readings {
		if reading.FieldID == "" {
			return nil, fmt.Errorf("%w: reading without field id", models.ErrValidationFailed)
		}

		if _, exists := static.readings[reading.FieldID]; exists {
			return nil, fmt.Errorf("%w: duplicate reading for field %s", models.ErrValidationFailed, reading.FieldID)
		}

		static.order = append(static.order, reading.FieldID)
		static.readings[reading.FieldID] = reading
	}

	return static, nil
}

func (s *Static) Get(_ context.Context, fieldID string) (models.FieldReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reading, ok := s.readings[fieldID]
	if !ok {
		return models.FieldReading{}, fmt.Errorf("%w: %s", ErrReadingNotFound, fieldID)
	}

	return reading, nil
}

// List returns readings in the order they were given.
func (s *Static) List(_ context.Context) ([]models.FieldReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.FieldReading, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.readings[id])
	}

	return all, nil
}

// Put replaces or appends the reading for its field.
func (s *Static) Put(_ context.Context, reading models.FieldReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.readings[reading.FieldID]; !exists {
		s.order = append(s.order, reading.FieldID)
	}

	s.readings[reading.FieldID] = reading

	return nil
}

func (s *Static) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Static) Close() error {
	return nil
}
