package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dukex/agroops/pkg/eventbus"
	"github.com/dukex/agroops/pkg/events"
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/otelhelper"
	"github.com/dukex/agroops/pkg/persistence"
	"github.com/dukex/agroops/pkg/tasktypes"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Task manages assigned field work.
type Task struct {
	base

	persistence persistence.Persistence
	types       *tasktypes.Store
}

// NewTask creates a task service accepting the task types of types. A nil
// catalog accepts any type.
func NewTask(
	persistence persistence.Persistence,
	types *tasktypes.Store,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Task {
	return &Task{
		base:        newBase(logger, publisher, "task_service"),
		persistence: persistence,
		types:       types,
	}
}

// TaskInput describes a new task.
type TaskInput struct {
	Title    string
	Type     string
	Assignee string
	Field    string
	CropKind string
	DueDate  time.Time
	Notes    string
}

// TaskFilter narrows List. Zero values match everything.
type TaskFilter struct {
	Status models.TaskStatus
	Field  string
}

// Create stores a new pending task.
func (s *Task) Create(ctx context.Context, input TaskInput) (*models.Task, error) {
	ctx, span := s.span(ctx, "task.create")
	defer span.End()

	err := s.validate(input)
	if err != nil {
		return nil, fail(span, err)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = s.typeName(input.Type)
	}

	task := &models.Task{
		ID:       uuid.NewString(),
		Title:    title,
		Type:     input.Type,
		Assignee: strings.TrimSpace(input.Assignee),
		Status:   models.TaskStatusPending,
		Field:    input.Field,
		CropKind: input.CropKind,
		DueDate:  input.DueDate.UTC(),
		Notes:    input.Notes,
	}

	err = s.persistence.TaskRepository().Save(ctx, task)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to save task: %w", err))
	}

	span.SetAttributes(attribute.String(otelhelper.TaskIDKey, task.ID))
	s.logger.InfoContext(ctx, "Task created", "task_id", task.ID, "type", task.Type, "field", task.Field)
	s.publish(ctx, task.ID, events.NewTaskCreated(task))

	return task, nil
}

func (s *Task) validate(input TaskInput) error {
	if input.Type == "" {
		return NewValidationError("create_task", CodeInvalidTask, "task type is required", nil)
	}

	if s.types != nil && !s.types.Contains(input.Type) {
		return NewValidationError("create_task", CodeInvalidTask, fmt.Sprintf("unknown task type %q", input.Type), nil)
	}

	if input.DueDate.IsZero() {
		return NewValidationError("create_task", CodeInvalidTask, "due date is required", nil)
	}

	return nil
}

func (s *Task) typeName(id string) string {
	if s.types == nil {
		return id
	}

	taskType, err := s.types.Get(id)
	if err != nil {
		return id
	}

	return taskType.Name
}

// Get returns one task.
func (s *Task) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.persistence.TaskRepository().GetByID(ctx, id)
}

// List returns the tasks matching filter, ordered by due date.
func (s *Task) List(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	tasks, err := s.persistence.TaskRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return slices.DeleteFunc(tasks, func(task *models.Task) bool {
		return (filter.Status != "" && task.Status != filter.Status) ||
			(filter.Field != "" && task.Field != filter.Field)
	}), nil
}

// ListOpen returns the tasks that are not completed.
func (s *Task) ListOpen(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.List(ctx, TaskFilter{})
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(tasks, func(task *models.Task) bool { return !task.Open() }), nil
}

// UpdateStatus moves a task to status. Completed tasks are final and
// started tasks never return to pending.
func (s *Task) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	ctx, span := s.span(ctx, "task.update_status",
		attribute.String(otelhelper.TaskIDKey, id), attribute.String(otelhelper.StatusKey, string(status)))
	defer span.End()

	unlock := s.locks.Lock(id)
	defer unlock()

	task, err := s.persistence.TaskRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}

	from := task.Status
	if from == status {
		return task, nil
	}

	err = task.Transition(status)
	if err != nil {
		return nil, fail(span, NewValidationError("update_task_status", CodeInvalidTask, err.Error(), err))
	}

	err = s.persistence.TaskRepository().Save(ctx, task)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to save task: %w", err))
	}

	s.logger.InfoContext(ctx, "Task status changed", "task_id", id, "from", from, "to", status)
	s.publish(ctx, id, events.NewTaskStatusChanged(task, from))

	return task, nil
}

// Delete removes a task.
func (s *Task) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	return s.persistence.TaskRepository().Delete(ctx, id)
}
