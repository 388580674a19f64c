package models

import (
	"fmt"
	"slices"
	"time"
)

// FieldValueEntry is the crop-level copy of one template field plus its value.
type FieldValueEntry struct {
	FieldID   string    `json:"field_id"`
	FieldName string    `json:"field_name"`
	Unit      string    `json:"unit"`
	SensorID  *string   `json:"sensor_id"`
	Role      FieldRole `json:"role"`
	MinValue  *float64  `json:"min_value,omitempty"`
	MaxValue  *float64  `json:"max_value,omitempty"`
	Value     string    `json:"value"`
}

// OperationInstance is a value-filled snapshot of a template attached to a crop.
// It holds no reference to the template: TemplateID and TemplateName are kept
// for display and audit only.
type OperationInstance struct {
	TemplateID   string            `json:"template_id"`
	TemplateName string            `json:"template_name"`
	Fields       []FieldValueEntry `json:"fields"`
	AttachedAt   time.Time         `json:"attached_at"`
}

// Snapshot builds a new instance from the template's current fields with
// empty values. The result shares no memory with the template.
func Snapshot(template *OperationTemplate) OperationInstance {
	fields := make([]FieldValueEntry, 0, len(template.Fields))

	for _, field := range template.Fields {
		fields = append(fields, FieldValueEntry{
			FieldID:   field.ID,
			FieldName: field.Name,
			Unit:      field.Unit,
			SensorID:  cloneString(field.SensorID),
			Role:      field.Role,
			MinValue:  cloneFloat(field.MinValue),
			MaxValue:  cloneFloat(field.MaxValue),
			Value:     "",
		})
	}

	return OperationInstance{
		TemplateID:   template.ID,
		TemplateName: template.Name,
		Fields:       fields,
		AttachedAt:   time.Now().UTC(),
	}
}

// Entry returns the entry for fieldID.
func (i *OperationInstance) Entry(fieldID string) (FieldValueEntry, bool) {
	for _, entry := range i.Fields {
		if entry.FieldID == fieldID {
			return entry, true
		}
	}

	return FieldValueEntry{}, false
}

// SetFieldValue overwrites the value of the entry keyed by fieldID. Unknown
// field ids are ignored because the snapshot may have diverged from the
// live template; the return value reports whether an entry was updated.
func (i *OperationInstance) SetFieldValue(fieldID, value string) bool {
	for idx := range i.Fields {
		if i.Fields[idx].FieldID == fieldID {
			i.Fields[idx].Value = value

			return true
		}
	}

	return false
}

// EntriesByRole returns the entries with the given role in snapshot order.
func (i *OperationInstance) EntriesByRole(role FieldRole) []FieldValueEntry {
	entries := make([]FieldValueEntry, 0, len(i.Fields))

	for _, entry := range i.Fields {
		if entry.Role == role {
			entries = append(entries, entry.clone())
		}
	}

	return entries
}

// Clone returns a deep copy of the instance.
func (i OperationInstance) Clone() OperationInstance {
	fields := make([]FieldValueEntry, len(i.Fields))
	for idx, entry := range i.Fields {
		fields[idx] = entry.clone()
	}

	i.Fields = fields

	return i
}

func (e FieldValueEntry) clone() FieldValueEntry {
	e.SensorID = cloneString(e.SensorID)
	e.MinValue = cloneFloat(e.MinValue)
	e.MaxValue = cloneFloat(e.MaxValue)

	return e
}

// Crop is a crop record owning its operation instances.
type Crop struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"       validate:"required"`
	Variety    string              `json:"variety"`
	Kind       string              `json:"kind"`
	Operations []OperationInstance `json:"operations"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Operation returns the instance created from templateID.
func (c *Crop) Operation(templateID string) (*OperationInstance, bool) {
	for idx := range c.Operations {
		if c.Operations[idx].TemplateID == templateID {
			return &c.Operations[idx], true
		}
	}

	return nil, false
}

// HasOperation reports whether templateID is already attached.
func (c *Crop) HasOperation(templateID string) bool {
	_, ok := c.Operation(templateID)

	return ok
}

// Attach snapshots the template into a new instance and appends it.
func (c *Crop) Attach(template *OperationTemplate) (*OperationInstance, error) {
	if c.HasOperation(template.ID) {
		return nil, fmt.Errorf("%w: template %s on crop %s", ErrDuplicateOperation, template.ID, c.ID)
	}

	c.Operations = append(c.Operations, Snapshot(template))

	return &c.Operations[len(c.Operations)-1], nil
}

// Detach removes the instance created from templateID and reports whether one existed.
func (c *Crop) Detach(templateID string) bool {
	before := len(c.Operations)
	c.Operations = slices.DeleteFunc(c.Operations, func(op OperationInstance) bool {
		return op.TemplateID == templateID
	})

	return len(c.Operations) != before
}

// Clone returns a deep copy of the crop.
func (c *Crop) Clone() *Crop {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Operations = make([]OperationInstance, len(c.Operations))

	for idx, op := range c.Operations {
		clone.Operations[idx] = op.Clone()
	}

	return &clone
}
