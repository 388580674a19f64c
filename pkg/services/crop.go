package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/agroops/pkg/eventbus"
	"github.com/dukex/agroops/pkg/events"
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/otelhelper"
	"github.com/dukex/agroops/pkg/persistence"
	"github.com/dukex/agroops/pkg/readings"
	"github.com/dukex/agroops/pkg/threshold"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Crop manages crops and the operation instances attached to them.
type Crop struct {
	base

	persistence persistence.Persistence
	readings    readings.Source
	classifier  threshold.Classifier
}

// NewCrop creates a new crop service.
func NewCrop(
	persistence persistence.Persistence,
	source readings.Source,
	classifier threshold.Classifier,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Crop {
	return &Crop{
		base:        newBase(logger, publisher, "crop_service"),
		persistence: persistence,
		readings:    source,
		classifier:  classifier,
	}
}

// CropInput describes a new crop.
type CropInput struct {
	Name    string
	Variety string
	Kind    string
}

// CropPatch replaces the non-nil crop attributes.
type CropPatch struct {
	Name    *string
	Variety *string
	Kind    *string
}

// List returns every crop.
func (s *Crop) List(ctx context.Context) ([]*models.Crop, error) {
	crops, err := s.persistence.CropRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list crops: %w", err)
	}

	return crops, nil
}

// Get returns one crop.
func (s *Crop) Get(ctx context.Context, cropID string) (*models.Crop, error) {
	return s.persistence.CropRepository().GetByID(ctx, cropID)
}

// Create stores a new crop without operations.
func (s *Crop) Create(ctx context.Context, input CropInput) (*models.Crop, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, NewValidationError("create_crop", CodeInvalidCrop, "crop name is required", nil)
	}

	crop := &models.Crop{
		ID:         uuid.NewString(),
		Name:       name,
		Variety:    strings.TrimSpace(input.Variety),
		Kind:       strings.TrimSpace(input.Kind),
		Operations: []models.OperationInstance{},
	}

	err := s.persistence.CropRepository().Save(ctx, crop)
	if err != nil {
		return nil, fmt.Errorf("failed to save crop: %w", err)
	}

	s.logger.InfoContext(ctx, "Crop created", "crop_id", crop.ID, "kind", crop.Kind)

	return crop, nil
}

// Update replaces crop attributes. Operations are untouched.
func (s *Crop) Update(ctx context.Context, cropID string, patch CropPatch) (*models.Crop, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, NewValidationError("update_crop", CodeInvalidCrop, "crop name is required", nil)
	}

	unlock := s.locks.Lock(cropID)
	defer unlock()

	crop, err := s.persistence.CropRepository().GetByID(ctx, cropID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		crop.Name = strings.TrimSpace(*patch.Name)
	}

	if patch.Variety != nil {
		crop.Variety = strings.TrimSpace(*patch.Variety)
	}

	if patch.Kind != nil {
		crop.Kind = strings.TrimSpace(*patch.Kind)
	}

	err = s.persistence.CropRepository().Save(ctx, crop)
	if err != nil {
		return nil, fmt.Errorf("failed to save crop: %w", err)
	}

	return crop, nil
}

// Delete removes a crop and its operation instances.
func (s *Crop) Delete(ctx context.Context, cropID string) error {
	unlock := s.locks.Lock(cropID)
	defer unlock()

	return s.persistence.CropRepository().Delete(ctx, cropID)
}

// Attach snapshots the template's current fields into a new instance on the
// crop. The template is read by value; later template edits never reach the
// instance.
func (s *Crop) Attach(ctx context.Context, cropID, templateID string) (*models.OperationInstance, error) {
	ctx, span := s.span(ctx, "crop.attach",
		attribute.String(otelhelper.CropIDKey, cropID), attribute.String(otelhelper.TemplateIDKey, templateID))
	defer span.End()

	template, err := s.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, fail(span, err)
	}

	unlock := s.locks.Lock(cropID)
	defer unlock()

	crop, err := s.persistence.CropRepository().GetByID(ctx, cropID)
	if err != nil {
		return nil, fail(span, err)
	}

	instance, err := crop.Attach(template)
	if err != nil {
		return nil, fail(span, err)
	}

	instance.AttachedAt = time.Now().UTC()
	attached := instance.Clone()

	err = s.persistence.CropRepository().Save(ctx, crop)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to save crop: %w", err))
	}

	s.logger.InfoContext(ctx, "Operation attached", "crop_id", cropID, "template_id", templateID, "fields", len(attached.Fields))
	s.publish(ctx, cropID, events.NewOperationChanged(events.OperationAttachedEvent, cropID, templateID))

	return &attached, nil
}

// Detach removes the instance created from templateID. Detaching a template
// that is not attached is a no-op.
func (s *Crop) Detach(ctx context.Context, cropID, templateID string) error {
	ctx, span := s.span(ctx, "crop.detach",
		attribute.String(otelhelper.CropIDKey, cropID), attribute.String(otelhelper.TemplateIDKey, templateID))
	defer span.End()

	unlock := s.locks.Lock(cropID)
	defer unlock()

	crop, err := s.persistence.CropRepository().GetByID(ctx, cropID)
	if err != nil {
		return fail(span, err)
	}

	if !crop.Detach(templateID) {
		return nil
	}

	err = s.persistence.CropRepository().Save(ctx, crop)
	if err != nil {
		return fail(span, fmt.Errorf("failed to save crop: %w", err))
	}

	s.logger.InfoContext(ctx, "Operation detached", "crop_id", cropID, "template_id", templateID)
	s.publish(ctx, cropID, events.NewOperationChanged(events.OperationDetachedEvent, cropID, templateID))

	return nil
}

// SetFieldValue stores the raw value of one instance field. Values are kept
// as entered; an unknown field id is ignored.
func (s *Crop) SetFieldValue(ctx context.Context, cropID, templateID, fieldID, value string) error {
	ctx, span := s.span(ctx, "crop.set_field_value",
		attribute.String(otelhelper.CropIDKey, cropID), attribute.String(otelhelper.TemplateIDKey, templateID),
		attribute.String(otelhelper.FieldIDKey, fieldID))
	defer span.End()

	unlock := s.locks.Lock(cropID)
	defer unlock()

	crop, instance, err := s.instance(ctx, cropID, templateID)
	if err != nil {
		return fail(span, err)
	}

	if !instance.SetFieldValue(fieldID, value) {
		s.logger.DebugContext(ctx, "Ignoring value for unknown field", "crop_id", cropID, "template_id", templateID, "field_id", fieldID)

		return nil
	}

	err = s.persistence.CropRepository().Save(ctx, crop)
	if err != nil {
		return fail(span, fmt.Errorf("failed to save crop: %w", err))
	}

	event := events.NewOperationChanged(events.FieldValueSetEvent, cropID, templateID)
	event.FieldID = fieldID
	event.Value = value
	s.publish(ctx, cropID, event)

	return nil
}

// ListInstances returns the crop's operation instances in attach order.
func (s *Crop) ListInstances(ctx context.Context, cropID string) ([]models.OperationInstance, error) {
	crop, err := s.persistence.CropRepository().GetByID(ctx, cropID)
	if err != nil {
		return nil, err
	}

	return crop.Operations, nil
}

// AvailableTemplates returns the templates not yet attached to the crop.
func (s *Crop) AvailableTemplates(ctx context.Context, cropID string) ([]*models.OperationTemplate, error) {
	crop, err := s.persistence.CropRepository().GetByID(ctx, cropID)
	if err != nil {
		return nil, err
	}

	templates, err := s.persistence.TemplateRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	available := make([]*models.OperationTemplate, 0, len(templates))

	for _, template := range templates {
		if !crop.HasOperation(template.ID) {
			available = append(available, template)
		}
	}

	return available, nil
}

// FillFromReading copies the field reading into every empty sensor-bound
// entry of the instance. Entries already holding a value are kept.
func (s *Crop) FillFromReading(ctx context.Context, cropID, templateID, fieldID string) (*models.OperationInstance, error) {
	ctx, span := s.span(ctx, "crop.fill_from_reading",
		attribute.String(otelhelper.CropIDKey, cropID), attribute.String(otelhelper.FieldKey, fieldID))
	defer span.End()

	reading, err := s.readings.Get(ctx, fieldID)
	if err != nil {
		return nil, fail(span, err)
	}

	unlock := s.locks.Lock(cropID)
	defer unlock()

	crop, instance, err := s.instance(ctx, cropID, templateID)
	if err != nil {
		return nil, fail(span, err)
	}

	var filled []string

	for _, entry := range instance.Fields {
		if entry.SensorID == nil || entry.Value != "" {
			continue
		}

		value, ok := reading.SensorValue(*entry.SensorID)
		if !ok || math.IsNaN(value) {
			continue
		}

		instance.SetFieldValue(entry.FieldID, strconv.FormatFloat(value, 'f', -1, 64))
		filled = append(filled, entry.FieldID)
	}

	if len(filled) > 0 {
		err = s.persistence.CropRepository().Save(ctx, crop)
		if err != nil {
			return nil, fail(span, fmt.Errorf("failed to save crop: %w", err))
		}

		for _, id := range filled {
			value, _ := instance.Entry(id)
			event := events.NewOperationChanged(events.FieldValueSetEvent, cropID, templateID)
			event.FieldID = id
			event.Value = value.Value
			s.publish(ctx, cropID, event)
		}
	}

	s.logger.InfoContext(ctx, "Instance filled from reading", "crop_id", cropID, "template_id", templateID,
		"field", fieldID, "filled", len(filled))

	result := instance.Clone()

	return &result, nil
}

// ConditionCheck is the evaluation of one start-condition entry.
type ConditionCheck struct {
	FieldID   string        `json:"field_id"`
	FieldName string        `json:"field_name"`
	Unit      string        `json:"unit"`
	Value     string        `json:"value"`
	Evaluated bool          `json:"evaluated"`
	Status    models.Status `json:"status,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

// Readiness tells whether an attached operation may start.
type Readiness struct {
	CropID     string           `json:"crop_id"`
	TemplateID string           `json:"template_id"`
	Ready      bool             `json:"ready"`
	Conditions []ConditionCheck `json:"conditions"`
}

// CheckStartConditions evaluates the instance's start conditions against
// their snapshot bounds. The operation is ready when every bounded condition
// has a value and none is critical.
func (s *Crop) CheckStartConditions(ctx context.Context, cropID, templateID string) (*Readiness, error) {
	_, instance, err := s.instance(ctx, cropID, templateID)
	if err != nil {
		return nil, err
	}

	readiness := &Readiness{CropID: cropID, TemplateID: templateID, Ready: true, Conditions: []ConditionCheck{}}

	for _, entry := range instance.EntriesByRole(models.RoleStartCondition) {
		check, err := s.checkCondition(entry)
		if err != nil {
			return nil, err
		}

		bounded := entry.MinValue != nil || entry.MaxValue != nil
		if (bounded && !check.Evaluated) || check.Status == models.StatusCritical {
			readiness.Ready = false
		}

		readiness.Conditions = append(readiness.Conditions, check)
	}

	return readiness, nil
}

func (s *Crop) checkCondition(entry models.FieldValueEntry) (ConditionCheck, error) {
	check := ConditionCheck{FieldID: entry.FieldID, FieldName: entry.FieldName, Unit: entry.Unit, Value: entry.Value}

	switch {
	case entry.MinValue == nil && entry.MaxValue == nil:
		check.Reason = "no bounds"

		return check, nil
	case strings.TrimSpace(entry.Value) == "":
		check.Reason = "no value"

		return check, nil
	}

	value, err := threshold.ParseValue(entry.Value)
	if err != nil {
		return check, NewValidationError("check_start_conditions", CodeInvalidValue,
			fmt.Sprintf("field %q: %v", entry.FieldName, err), err)
	}

	check.Evaluated = true

	switch {
	case entry.MinValue != nil && entry.MaxValue != nil:
		lower, upper := *entry.MinValue, *entry.MaxValue
		check.Status = s.classifier.Classify(value, models.Range{Min: lower, Max: upper, Optimal: (lower + upper) / 2})
	case entry.MinValue != nil && value < *entry.MinValue,
		entry.MaxValue != nil && value > *entry.MaxValue:
		check.Status = models.StatusCritical
	default:
		check.Status = models.StatusAcceptable
	}

	return check, nil
}

func (s *Crop) instance(ctx context.Context, cropID, templateID string) (*models.Crop, *models.OperationInstance, error) {
	crop, err := s.persistence.CropRepository().GetByID(ctx, cropID)
	if err != nil {
		return nil, nil, err
	}

	instance, ok := crop.Operation(templateID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: template %s on crop %s", ErrOperationNotFound, templateID, cropID)
	}

	return crop, instance, nil
}
