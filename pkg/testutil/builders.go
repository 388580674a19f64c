// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/agroops/pkg/models"
	"github.com/google/uuid"
)

// CreateTestTemplate creates a Sowing template with one bounded soil
// temperature start condition and one manual execution field.
func CreateTestTemplate(overrides ...func(*models.OperationTemplate)) *models.OperationTemplate {
	sensorID := models.SensorSoilTemperature
	minValue, maxValue := 8.0, 18.0

	template := &models.OperationTemplate{
		ID:          uuid.New().String(),
		Name:        "Sowing",
		Description: "Seeding operation",
		Fields: []models.FieldDefinition{
			{
				ID: "f-temp", Name: "Soil temperature", Unit: "°C", SensorID: &sensorID,
				Role: models.RoleStartCondition, MinValue: &minValue, MaxValue: &maxValue,
			},
			{ID: "f-depth", Name: "Seeding depth", Unit: "cm", Role: models.RoleExecution},
		},
	}

	for _, override := range overrides {
		override(template)
	}

	return template
}

// WithTemplateID sets the template id.
func WithTemplateID(id string) func(*models.OperationTemplate) {
	return func(t *models.OperationTemplate) {
		t.ID = id
	}
}

// CreateTestTask creates a pending sowing task due on 2026-04-10.
func CreateTestTask(overrides ...func(*models.Task)) *models.Task {
	task := &models.Task{
		ID:      uuid.New().String(),
		Title:   "Sowing",
		Type:    "sowing",
		Status:  models.TaskStatusPending,
		DueDate: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
	}

	for _, override := range overrides {
		override(task)
	}

	return task
}

// WithTaskID sets the task id.
func WithTaskID(id string) func(*models.Task) {
	return func(t *models.Task) {
		t.ID = id
	}
}

// OnField binds the task to a field planted with cropKind.
func OnField(field, cropKind string) func(*models.Task) {
	return func(t *models.Task) {
		t.Field = field
		t.CropKind = cropKind
	}
}

// WithStatus sets the task status.
func WithStatus(status models.TaskStatus) func(*models.Task) {
	return func(t *models.Task) {
		t.Status = status
	}
}

// WinterWheat returns the winter wheat profile used across tests.
func WinterWheat() models.OptimalConditionProfile {
	return models.OptimalConditionProfile{
		Kind:         "winter-wheat",
		Name:         "Winter wheat",
		SoilTemp:     models.Range{Min: 3, Max: 8, Optimal: 5},
		SoilMoisture: models.Range{Min: 60, Max: 80, Optimal: 70},
		Ph:           models.Range{Min: 6, Max: 7.5, Optimal: 6.8},
	}
}

// TaskTypes returns the sowing and harvesting task types with their
// parameter tables.
func TaskTypes() []models.TaskType {
	return []models.TaskType{
		{ID: "sowing", Name: "Sowing", Params: []models.TaskParameter{
			{Key: "seedRate", Label: "Seed rate", Unit: "kg/ha", Range: models.Range{Min: 100, Max: 300, Optimal: 200}},
			{Key: "sowingDepth", Label: "Sowing depth", Unit: "cm", Range: models.Range{Min: 3, Max: 8, Optimal: 5}},
		}},
		{ID: "harvesting", Name: "Harvesting", Params: []models.TaskParameter{
			{Key: "moisture", Label: "Grain moisture", Unit: "%", Range: models.Range{Min: 12, Max: 20, Optimal: 15}},
		}},
	}
}
