package persistence

import (
	"errors"
	"fmt"

	"github.com/dukex/agroops/pkg/models"
)

// Not-found errors wrap models.ErrNotFound so callers can match either.
var (
	// ErrTemplateNotFound indicates a template was not found by the given identifier.
	ErrTemplateNotFound = fmt.Errorf("template %w", models.ErrNotFound)

	// ErrCropNotFound indicates a crop was not found by the given identifier.
	ErrCropNotFound = fmt.Errorf("crop %w", models.ErrNotFound)

	// ErrTaskNotFound indicates a task was not found by the given identifier.
	ErrTaskNotFound = fmt.Errorf("task %w", models.ErrNotFound)

	// ErrUnsupportedScheme indicates a database URL no backend can open.
	ErrUnsupportedScheme = errors.New("unsupported persistence scheme")
)

// RecordError wraps a repository failure with the operation and record involved.
type RecordError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	Record string // Record kind: template, crop or task
	ID     string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Record, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for record errors.
func (e *RecordError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRecordError creates a new record error with context.
func NewRecordError(op, record, id string, err error) *RecordError {
	return &RecordError{
		Op:     op,
		Record: record,
		ID:     id,
		Err:    err,
	}
}

// IsNotFound checks if an error indicates a missing record of any kind.
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

// IsTemplateNotFound checks if an error indicates a template was not found.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsCropNotFound checks if an error indicates a crop was not found.
func IsCropNotFound(err error) bool {
	return errors.Is(err, ErrCropNotFound)
}

// IsTaskNotFound checks if an error indicates a task was not found.
func IsTaskNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound)
}
