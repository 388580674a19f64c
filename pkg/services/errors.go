// Package services implements the operation template, crop and task use cases
// over a persistence backend.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/persistence"
)

// Domain errors, re-exported so handlers only import this package.
var (
	// Validation Errors (400 Bad Request).
	ErrValidationFailed = models.ErrValidationFailed

	// Lookup Errors (404 Not Found).
	ErrNotFound          = models.ErrNotFound
	ErrProfileNotFound   = models.ErrProfileNotFound
	ErrTemplateNotFound  = persistence.ErrTemplateNotFound
	ErrCropNotFound      = persistence.ErrCropNotFound
	ErrTaskNotFound      = persistence.ErrTaskNotFound
	ErrFieldNotFound     = fmt.Errorf("field %w", models.ErrNotFound)
	ErrOperationNotFound = fmt.Errorf("operation %w", models.ErrNotFound)

	// Business Logic Conflicts (409 Conflict).
	ErrDuplicateOperation = models.ErrDuplicateOperation
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// IsNotFound checks if an error should return HTTP 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrProfileNotFound)
}

// IsProfileNotFound checks if an error reports a crop kind without a profile.
func IsProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateOperation)
}

// NewValidationError creates a new validation error with context. A nil err
// defaults to ErrValidationFailed.
func NewValidationError(op, code, message string, err error) *ServiceError {
	if err == nil {
		err = ErrValidationFailed
	}

	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Codes for ServiceError.Code.
const (
	CodeInvalidTemplate = "invalid_template"
	CodeInvalidField    = "invalid_field"
	CodeInvalidCrop     = "invalid_crop"
	CodeInvalidTask     = "invalid_task"
	CodeInvalidValue    = "invalid_value"
)
