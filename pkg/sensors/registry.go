// Package sensors provides the process-wide sensor catalog.
package sensors

import (
	"fmt"

	"github.com/dukex/agroops/pkg/models"
)

// Registry is a read-only lookup of sensor id to sensor. It is built once at
// startup and shared by every consumer.
type Registry struct {
	ordered []models.Sensor
	byID    map[string]models.Sensor
}

// NewRegistry builds a registry, rejecting empty or duplicated ids.
func NewRegistry(catalog []models.Sensor) (*Registry, error) {
	registry := &Registry{
		ordered: make([]models.Sensor, 0, len(catalog)),
		byID:    make(map[string]models.Sensor, len(catalog)),
	}

	for _, sensor := range catalog {
		if sensor.ID == "" {
			return nil, fmt.Errorf("%w: sensor id is required", models.ErrValidationFailed)
		}

		if _, exists := registry.byID[sensor.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate sensor id %q", models.ErrValidationFailed, sensor.ID)
		}

		registry.byID[sensor.ID] = sensor
		registry.ordered = append(registry.ordered, sensor)
	}

	return registry, nil
}

// Lookup resolves a sensor binding. A nil id is a manual-entry field and,
// like an unknown id, yields false.
func (r *Registry) Lookup(sensorID *string) (models.Sensor, bool) {
	if sensorID == nil {
		return models.Sensor{}, false
	}

	sensor, ok := r.byID[*sensorID]

	return sensor, ok
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	_, ok := r.byID[id]

	return ok
}

// List returns the sensors in catalog order.
func (r *Registry) List() []models.Sensor {
	sensors := make([]models.Sensor, len(r.ordered))
	copy(sensors, r.ordered)

	return sensors
}
