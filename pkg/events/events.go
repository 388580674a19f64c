// Package events defines the domain events published when templates, crops
// and tasks change.
package events

import (
	"time"

	"github.com/dukex/agroops/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every agroops event.
const Topic = "agroops.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Template lifecycle events.
	TemplateCreatedEvent EventType = "template.created"
	TemplateUpdatedEvent EventType = "template.updated"
	TemplateDeletedEvent EventType = "template.deleted"

	// Crop operation events.
	OperationAttachedEvent EventType = "crop.operation.attached"
	OperationDetachedEvent EventType = "crop.operation.detached"
	FieldValueSetEvent     EventType = "crop.operation.field_value_set"

	// Task events.
	TaskCreatedEvent       EventType = "task.created"
	TaskStatusChangedEvent EventType = "task.status_changed"

	// AdvisoryRaisedEvent is emitted by the monitor when an open task's field
	// has a blocking advisory.
	AdvisoryRaisedEvent EventType = "advisory.raised"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func newBase(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// TemplateChanged reports a template creation, edit or deletion. Field
// changes are reported as updates carrying the affected field id.
type TemplateChanged struct {
	BaseEvent

	TemplateID   string `json:"template_id"`
	TemplateName string `json:"template_name"`
	FieldID      string `json:"field_id,omitempty"`
}

func (e TemplateChanged) GetType() EventType {
	return e.Type
}

// NewTemplateChanged builds a template event of the given type.
func NewTemplateChanged(eventType EventType, template *models.OperationTemplate, fieldID string) TemplateChanged {
	return TemplateChanged{
		BaseEvent:    newBase(eventType),
		TemplateID:   template.ID,
		TemplateName: template.Name,
		FieldID:      fieldID,
	}
}

// OperationChanged reports an attach, detach or value edit on a crop.
type OperationChanged struct {
	BaseEvent

	CropID     string `json:"crop_id"`
	TemplateID string `json:"template_id"`
	FieldID    string `json:"field_id,omitempty"`
	Value      string `json:"value,omitempty"`
}

func (e OperationChanged) GetType() EventType {
	return e.Type
}

// NewOperationChanged builds a crop operation event of the given type.
func NewOperationChanged(eventType EventType, cropID, templateID string) OperationChanged {
	return OperationChanged{
		BaseEvent:  newBase(eventType),
		CropID:     cropID,
		TemplateID: templateID,
	}
}

// TaskChanged reports task creation and status transitions.
type TaskChanged struct {
	BaseEvent

	TaskID   string            `json:"task_id"`
	TaskType string            `json:"task_type"`
	Field    string            `json:"field"`
	From     models.TaskStatus `json:"from,omitempty"`
	To       models.TaskStatus `json:"to"`
}

func (e TaskChanged) GetType() EventType {
	return e.Type
}

// NewTaskCreated builds the event for a new task.
func NewTaskCreated(task *models.Task) TaskChanged {
	return TaskChanged{
		BaseEvent: newBase(TaskCreatedEvent),
		TaskID:    task.ID,
		TaskType:  task.Type,
		Field:     task.Field,
		To:        task.Status,
	}
}

// NewTaskStatusChanged builds the event for a status transition.
func NewTaskStatusChanged(task *models.Task, from models.TaskStatus) TaskChanged {
	event := NewTaskCreated(task)
	event.BaseEvent = newBase(TaskStatusChangedEvent)
	event.From = from

	return event
}

// AdvisoryRaised carries the blocking advisories found for an open task.
type AdvisoryRaised struct {
	BaseEvent

	TaskID     string            `json:"task_id"`
	Field      string            `json:"field"`
	CropKind   string            `json:"crop_kind"`
	Advisories []models.Advisory `json:"advisories"`
}

func (e AdvisoryRaised) GetType() EventType {
	return AdvisoryRaisedEvent
}

// NewAdvisoryRaised builds the monitor event for a task.
func NewAdvisoryRaised(task *models.Task, advisories []models.Advisory) AdvisoryRaised {
	return AdvisoryRaised{
		BaseEvent:  newBase(AdvisoryRaisedEvent),
		TaskID:     task.ID,
		Field:      task.Field,
		CropKind:   task.CropKind,
		Advisories: advisories,
	}
}

// New returns an empty event value for decoding a payload of eventType.
func New(eventType EventType) (any, bool) {
	switch eventType {
	case TemplateCreatedEvent, TemplateUpdatedEvent, TemplateDeletedEvent:
		return &TemplateChanged{}, true
	case OperationAttachedEvent, OperationDetachedEvent, FieldValueSetEvent:
		return &OperationChanged{}, true
	case TaskCreatedEvent, TaskStatusChangedEvent:
		return &TaskChanged{}, true
	case AdvisoryRaisedEvent:
		return &AdvisoryRaised{}, true
	default:
		return nil, false
	}
}
