// Package web provides the HTTP handlers of the agroops API.
package web

import (
	"time"

	"github.com/dukex/agroops/pkg/models"
)

// CreateTemplateRequest is the body of POST /templates.
type CreateTemplateRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
}

// UpdateTemplateRequest is the body of PATCH /templates/:id. Absent
// attributes are left unchanged.
type UpdateTemplateRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
}

// AddFieldRequest is the body of POST /templates/:id/fields. A null or
// absent sensor_id makes a manual-entry field.
type AddFieldRequest struct {
	Name     string   `json:"name"      validate:"required"`
	Unit     string   `json:"unit"`
	SensorID *string  `json:"sensor_id"`
	Role     string   `json:"role"      validate:"required,oneof=start_condition execution"`
	MinValue *float64 `json:"min_value"`
	MaxValue *float64 `json:"max_value"`
}

// CreateCropRequest is the body of POST /crops.
type CreateCropRequest struct {
	Name    string `json:"name"    validate:"required"`
	Variety string `json:"variety"`
	Kind    string `json:"kind"`
}

// UpdateCropRequest is the body of PATCH /crops/:id.
type UpdateCropRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,min=1"`
	Variety *string `json:"variety,omitempty"`
	Kind    *string `json:"kind,omitempty"`
}

// AttachRequest is the body of POST /crops/:id/operations.
type AttachRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

// SetFieldValueRequest is the body of PUT .../fields/:fieldId. An empty
// value clears the entry.
type SetFieldValueRequest struct {
	Value string `json:"value"`
}

// FillRequest is the body of POST .../fill.
type FillRequest struct {
	FieldID string `json:"field_id" validate:"required"`
}

// SelectionRequest is the body of the task draft selection endpoints.
type SelectionRequest struct {
	ID string `json:"id" validate:"required"`
}

// TaskParameterRequest is one row of a task type's parameter table. optimal
// defaults to the middle of the range.
type TaskParameterRequest struct {
	Key     string   `json:"key"     validate:"required"`
	Label   string   `json:"label"   validate:"required"`
	Unit    string   `json:"unit"`
	Min     *float64 `json:"min"     validate:"required"`
	Max     *float64 `json:"max"     validate:"required"`
	Optimal *float64 `json:"optimal"`
}

// UpdateTaskParamsRequest is the body of PUT /task-types/:id/params.
type UpdateTaskParamsRequest struct {
	Params []TaskParameterRequest `json:"params" validate:"required,dive"`
}

func (r UpdateTaskParamsRequest) toModels() []models.TaskParameter {
	params := make([]models.TaskParameter, len(r.Params))

	for i, p := range r.Params {
		rng := models.Range{Min: *p.Min, Max: *p.Max, Optimal: (*p.Min + *p.Max) / 2}
		if p.Optimal != nil {
			rng.Optimal = *p.Optimal
		}

		params[i] = models.TaskParameter{Key: p.Key, Label: p.Label, Unit: p.Unit, Range: rng}
	}

	return params
}

// CreateTaskRequest is the body of POST /tasks. With draft_id set, the
// draft's type, crop kind and field fill the attributes left empty.
type CreateTaskRequest struct {
	DraftID  string    `json:"draft_id"  validate:"required_without=Type"`
	Title    string    `json:"title"`
	Type     string    `json:"type"      validate:"required_without=DraftID"`
	Assignee string    `json:"assignee"`
	Field    string    `json:"field"`
	CropKind string    `json:"crop_kind"`
	DueDate  time.Time `json:"due_date"  validate:"required"`
	Notes    string    `json:"notes"`
}

// UpdateTaskStatusRequest is the body of PATCH /tasks/:id/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// ClassifyResponse is the result of GET /classify.
type ClassifyResponse struct {
	Value  float64       `json:"value"`
	Range  models.Range  `json:"range"`
	Status models.Status `json:"status"`
}
