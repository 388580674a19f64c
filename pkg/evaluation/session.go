package evaluation

import (
	"fmt"
	"slices"
	"time"

	"github.com/dukex/agroops/pkg/models"
)

// State is the step a task draft has reached.
type State string

const (
	StateEmpty         State = "empty"
	StateTypeSelected  State = "type_selected"
	StateCropSelected  State = "crop_selected"
	StateFieldSelected State = "field_selected"
	StateEvaluated     State = "evaluated"
)

// Session is a task draft: the selections made so far and, once both a crop
// kind and a field are known, their diagnostics. Sessions are not persisted.
type Session struct {
	ID          string       `json:"id"`
	State       State        `json:"state"`
	TaskType    string                 `json:"task_type,omitempty"`
	Parameters  []models.TaskParameter `json:"parameters,omitempty"`
	CropKind    string                 `json:"crop_kind,omitempty"`
	FieldID     string                 `json:"field_id,omitempty"`
	Diagnostics *Diagnostics           `json:"diagnostics,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// NewSession returns an empty draft.
func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, State: StateEmpty, CreatedAt: now, UpdatedAt: now}
}

// SelectType sets the task type and clears every later selection along with
// the previous type's parameters.
func (s *Session) SelectType(taskType string) error {
	if taskType == "" {
		return fmt.Errorf("%w: task type is required", models.ErrValidationFailed)
	}

	s.TaskType = taskType
	s.Parameters = nil
	s.CropKind = ""
	s.FieldID = ""
	s.Diagnostics = nil
	s.State = StateTypeSelected

	return nil
}

// SelectCrop sets the crop kind and clears the field and diagnostics.
func (s *Session) SelectCrop(kind string) error {
	if s.State == StateEmpty {
		return fmt.Errorf("%w: select a task type before the crop", models.ErrValidationFailed)
	}

	if kind == "" {
		return fmt.Errorf("%w: crop kind is required", models.ErrValidationFailed)
	}

	s.CropKind = kind
	s.FieldID = ""
	s.Diagnostics = nil
	s.State = StateCropSelected

	return nil
}

// SelectField sets the field and clears stale diagnostics.
func (s *Session) SelectField(fieldID string) error {
	if s.State == StateEmpty || s.State == StateTypeSelected {
		return fmt.Errorf("%w: select a crop before the field", models.ErrValidationFailed)
	}

	if fieldID == "" {
		return fmt.Errorf("%w: field is required", models.ErrValidationFailed)
	}

	s.FieldID = fieldID
	s.Diagnostics = nil
	s.State = StateFieldSelected

	return nil
}

// Evaluate stores the diagnostics of the selected crop kind and field.
func (s *Session) Evaluate(diagnostics *Diagnostics) error {
	if s.State != StateFieldSelected && s.State != StateEvaluated {
		return fmt.Errorf("%w: select a crop and a field before evaluating", models.ErrValidationFailed)
	}

	s.Diagnostics = diagnostics
	s.State = StateEvaluated

	return nil
}

// Clone returns a copy safe to hand out of the store. Diagnostics are never
// mutated after evaluation and are shared.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Parameters = slices.Clone(s.Parameters)

	return &clone
}
