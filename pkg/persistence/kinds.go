package persistence

import (
	"cmp"
	"time"

	"github.com/dukex/agroops/pkg/models"
)

// Kind describes one record kind to the generic backends: its collection
// name, identity, copy semantics and listing order.
type Kind[T any] struct {
	Collection string // table or directory name
	Record     string // singular name used in errors
	NotFound   error

	ID    func(T) string
	Clone func(T) T
	// Stamp sets CreatedAt when zero and UpdatedAt to now.
	Stamp   func(T, time.Time)
	Compare func(a, b T) int
}

// Templates is the kind descriptor for operation templates.
var Templates = Kind[*models.OperationTemplate]{
	Collection: "templates",
	Record:     "template",
	NotFound:   ErrTemplateNotFound,
	ID:         func(t *models.OperationTemplate) string { return t.ID },
	Clone:      (*models.OperationTemplate).Clone,
	Stamp: func(t *models.OperationTemplate, now time.Time) {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}

		t.UpdatedAt = now
	},
	Compare: func(a, b *models.OperationTemplate) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	},
}

// Crops is the kind descriptor for crops.
var Crops = Kind[*models.Crop]{
	Collection: "crops",
	Record:     "crop",
	NotFound:   ErrCropNotFound,
	ID:         func(c *models.Crop) string { return c.ID },
	Clone:      (*models.Crop).Clone,
	Stamp: func(c *models.Crop, now time.Time) {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}

		c.UpdatedAt = now
	},
	Compare: func(a, b *models.Crop) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	},
}

// Tasks is the kind descriptor for tasks, listed by due date.
var Tasks = Kind[*models.Task]{
	Collection: "tasks",
	Record:     "task",
	NotFound:   ErrTaskNotFound,
	ID:         func(t *models.Task) string { return t.ID },
	Clone:      (*models.Task).Clone,
	Stamp: func(t *models.Task, now time.Time) {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}

		t.UpdatedAt = now
	},
	Compare: func(a, b *models.Task) int {
		return cmp.Or(a.DueDate.Compare(b.DueDate), a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	},
}
