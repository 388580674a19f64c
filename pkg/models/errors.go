package models

import "errors"

// Domain errors shared by every layer. Persistence and service errors wrap
// these so callers can match with errors.Is regardless of where they failed.
var (
	// ErrNotFound indicates an unknown template, field, crop, reading or task id.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateOperation indicates a template is already attached to the crop.
	ErrDuplicateOperation = errors.New("operation already attached to crop")

	// ErrValidationFailed indicates the input violated a model invariant.
	ErrValidationFailed = errors.New("validation failed")

	// ErrProfileNotFound indicates no optimal-condition profile is loaded for a crop kind.
	ErrProfileNotFound = errors.New("optimal condition profile not found")
)
