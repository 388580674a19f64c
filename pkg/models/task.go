package models

import (
	"fmt"
	"slices"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskType is a catalog entry for a kind of field work together with the
// reference ranges of the parameters measured while doing it.
type TaskType struct {
	ID     string          `json:"id"     yaml:"id"     validate:"required"`
	Name   string          `json:"name"   yaml:"name"   validate:"required"`
	Params []TaskParameter `json:"params" yaml:"params" validate:"dive"`
}

// TaskParameter is one row of a task type's parameter table.
type TaskParameter struct {
	Key   string `json:"key"   yaml:"key"   validate:"required"`
	Label string `json:"label" yaml:"label" validate:"required"`
	Unit  string `json:"unit"  yaml:"unit"`
	Range Range  `json:"range" yaml:"range"`
}

// Param returns the parameter with the given key.
func (t TaskType) Param(key string) (TaskParameter, bool) {
	for _, param := range t.Params {
		if param.Key == key {
			return param, true
		}
	}

	return TaskParameter{}, false
}

// Validate checks the id, the name and the parameter table.
func (t TaskType) Validate() error {
	if t.ID == "" || t.Name == "" {
		return fmt.Errorf("%w: task type requires an id and a name", ErrValidationFailed)
	}

	return ValidateTaskParams(t.Params)
}

// Clone returns a copy that shares no parameter slice with t.
func (t TaskType) Clone() TaskType {
	t.Params = slices.Clone(t.Params)

	return t
}

// ValidateTaskParams requires a key and a label on every row, unique keys,
// and a valid range.
func ValidateTaskParams(params []TaskParameter) error {
	seen := make(map[string]struct{}, len(params))

	for _, param := range params {
		if param.Key == "" || param.Label == "" {
			return fmt.Errorf("%w: task parameter requires a key and a label", ErrValidationFailed)
		}

		if _, dup := seen[param.Key]; dup {
			return fmt.Errorf("%w: duplicate task parameter %q", ErrValidationFailed, param.Key)
		}

		seen[param.Key] = struct{}{}

		if err := param.Range.Validate(); err != nil {
			return fmt.Errorf("task parameter %s: %w", param.Key, err)
		}
	}

	return nil
}

// Task is a unit of assigned field work.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"      validate:"required"`
	Type      string     `json:"type"       validate:"required"`
	Assignee  string     `json:"assignee"`
	Status    TaskStatus `json:"status"`
	Field     string     `json:"field"`
	CropKind  string     `json:"crop_kind,omitempty"`
	DueDate   time.Time  `json:"due_date"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Open reports whether the task still awaits completion.
func (t *Task) Open() bool {
	return t.Status != TaskStatusCompleted
}

// Transition moves the task to next. Completed tasks are final and a task
// never moves back to pending once started.
func (t *Task) Transition(next TaskStatus) error {
	switch next {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
	default:
		return fmt.Errorf("%w: unknown task status %q", ErrValidationFailed, next)
	}

	if t.Status == TaskStatusCompleted && next != TaskStatusCompleted {
		return fmt.Errorf("%w: task %s is completed", ErrValidationFailed, t.ID)
	}

	if t.Status == TaskStatusInProgress && next == TaskStatusPending {
		return fmt.Errorf("%w: task %s already started", ErrValidationFailed, t.ID)
	}

	t.Status = next
	t.UpdatedAt = time.Now().UTC()

	return nil
}

// Clone returns a copy of the task.
func (t *Task) Clone() *Task {
	clone := *t

	return &clone
}
