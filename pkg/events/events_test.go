package events

import (
	"testing"

	"github.com/dukex/agroops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateChanged(t *testing.T) {
	template := &models.OperationTemplate{ID: "tpl-1", Name: "Sowing"}

	event := NewTemplateChanged(TemplateUpdatedEvent, template, "f-1")

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, TemplateUpdatedEvent, event.GetType())
	assert.Equal(t, "tpl-1", event.TemplateID)
	assert.Equal(t, "f-1", event.FieldID)
}

func TestNewTaskStatusChanged(t *testing.T) {
	task := &models.Task{ID: "task-1", Type: "sowing", Field: "field1", Status: models.TaskStatusInProgress}

	event := NewTaskStatusChanged(task, models.TaskStatusPending)

	assert.Equal(t, TaskStatusChangedEvent, event.GetType())
	assert.Equal(t, models.TaskStatusPending, event.From)
	assert.Equal(t, models.TaskStatusInProgress, event.To)
}

func TestNew(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      any
	}{
		{TemplateCreatedEvent, &TemplateChanged{}},
		{TemplateDeletedEvent, &TemplateChanged{}},
		{OperationAttachedEvent, &OperationChanged{}},
		{FieldValueSetEvent, &OperationChanged{}},
		{TaskCreatedEvent, &TaskChanged{}},
		{AdvisoryRaisedEvent, &AdvisoryRaised{}},
	}

	for _, tt := range tests {
		got, ok := New(tt.eventType)
		require.True(t, ok, tt.eventType)
		assert.IsType(t, tt.want, got)
	}

	_, ok := New("unknown")
	assert.False(t, ok)
}
