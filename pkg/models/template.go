// Package models defines the agronomic domain: operation templates, crop
// instances, optimal-condition profiles, readings and advisories.
package models

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// FieldRole groups template fields for display and evaluation.
type FieldRole string

const (
	RoleStartCondition FieldRole = "start_condition" // Precondition gating when an operation may begin
	RoleExecution      FieldRole = "execution"       // Value recorded while the operation runs
)

// Valid reports whether r is a known role.
func (r FieldRole) Valid() bool {
	return r == RoleStartCondition || r == RoleExecution
}

// FieldDefinition is the template-level description of one configurable parameter.
type FieldDefinition struct {
	ID       string    `json:"id"                  yaml:"id"`
	Name     string    `json:"name"                yaml:"name"                validate:"required"`
	Unit     string    `json:"unit"                yaml:"unit"`
	SensorID *string   `json:"sensor_id"           yaml:"sensor_id"`
	Role     FieldRole `json:"role"                yaml:"role"                validate:"required,oneof=start_condition execution"`
	MinValue *float64  `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue *float64  `json:"max_value,omitempty" yaml:"max_value,omitempty"`
}

// IsManual reports whether the field is filled by hand rather than by a sensor.
func (f FieldDefinition) IsManual() bool {
	return f.SensorID == nil
}

// Validate checks the field invariants. Sensor existence is checked by the
// caller, which owns the sensor registry.
func (f FieldDefinition) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: field name is required", ErrValidationFailed)
	}

	if !f.Role.Valid() {
		return fmt.Errorf("%w: invalid field role %q", ErrValidationFailed, f.Role)
	}

	for _, bound := range []*float64{f.MinValue, f.MaxValue} {
		if bound != nil && (math.IsNaN(*bound) || math.IsInf(*bound, 0)) {
			return fmt.Errorf("%w: field %q has a non-finite bound", ErrValidationFailed, f.Name)
		}
	}

	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		return fmt.Errorf("%w: field %q min value %v exceeds max value %v",
			ErrValidationFailed, f.Name, *f.MinValue, *f.MaxValue)
	}

	return nil
}

// Clone returns a copy that shares no pointers with f.
func (f FieldDefinition) Clone() FieldDefinition {
	f.SensorID = cloneString(f.SensorID)
	f.MinValue = cloneFloat(f.MinValue)
	f.MaxValue = cloneFloat(f.MaxValue)

	return f
}

// OperationTemplate is a reusable, editable definition of an operation's parameters.
type OperationTemplate struct {
	ID          string            `json:"id"          yaml:"id"`
	Name        string            `json:"name"        yaml:"name"        validate:"required"`
	Description string            `json:"description" yaml:"description"`
	Fields      []FieldDefinition `json:"fields"      yaml:"fields"      validate:"dive"`
	CreatedAt   time.Time         `json:"created_at"  yaml:"-"`
	UpdatedAt   time.Time         `json:"updated_at"  yaml:"-"`
}

// FieldsByRole returns the fields with the given role in insertion order.
func (t *OperationTemplate) FieldsByRole(role FieldRole) []FieldDefinition {
	fields := make([]FieldDefinition, 0, len(t.Fields))

	for _, field := range t.Fields {
		if field.Role == role {
			fields = append(fields, field.Clone())
		}
	}

	return fields
}

// Field returns a copy of the field with the given id.
func (t *OperationTemplate) Field(fieldID string) (FieldDefinition, bool) {
	for _, field := range t.Fields {
		if field.ID == fieldID {
			return field.Clone(), true
		}
	}

	return FieldDefinition{}, false
}

// RemoveField drops the field with the given id and reports whether it existed.
func (t *OperationTemplate) RemoveField(fieldID string) bool {
	before := len(t.Fields)
	t.Fields = slices.DeleteFunc(t.Fields, func(f FieldDefinition) bool {
		return f.ID == fieldID
	})

	return len(t.Fields) != before
}

// Clone returns a deep copy of the template.
func (t *OperationTemplate) Clone() *OperationTemplate {
	if t == nil {
		return nil
	}

	clone := *t
	clone.Fields = make([]FieldDefinition, len(t.Fields))

	for i, field := range t.Fields {
		clone.Fields[i] = field.Clone()
	}

	return &clone
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}

	v := *f

	return &v
}
