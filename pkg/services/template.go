package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/agroops/pkg/eventbus"
	"github.com/dukex/agroops/pkg/events"
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/otelhelper"
	"github.com/dukex/agroops/pkg/persistence"
	"github.com/dukex/agroops/pkg/sensors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Template manages operation templates.
type Template struct {
	base

	persistence persistence.Persistence
	sensors     *sensors.Registry
}

// NewTemplate creates a new template service.
func NewTemplate(
	persistence persistence.Persistence,
	registry *sensors.Registry,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Template {
	return &Template{
		base:        newBase(logger, publisher, "template_service"),
		persistence: persistence,
		sensors:     registry,
	}
}

// FieldInput describes a field to add to a template.
type FieldInput struct {
	Name     string
	Unit     string
	SensorID *string
	Role     models.FieldRole
	MinValue *float64
	MaxValue *float64
}

// TemplatePatch replaces the non-nil template attributes.
type TemplatePatch struct {
	Name        *string
	Description *string
}

// HealthCheck checks the health of the persistence layer.
func (s *Template) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every template.
func (s *Template) List(ctx context.Context) ([]*models.OperationTemplate, error) {
	templates, err := s.persistence.TemplateRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, nil
}

// Get returns one template.
func (s *Template) Get(ctx context.Context, id string) (*models.OperationTemplate, error) {
	return s.persistence.TemplateRepository().GetByID(ctx, id)
}

// Create stores a new template without fields.
func (s *Template) Create(ctx context.Context, name, description string) (*models.OperationTemplate, error) {
	ctx, span := s.span(ctx, "template.create")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fail(span, NewValidationError("create_template", CodeInvalidTemplate, "template name is required", nil))
	}

	template := &models.OperationTemplate{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Fields:      []models.FieldDefinition{},
	}

	err := s.persistence.TemplateRepository().Save(ctx, template)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to save template: %w", err))
	}

	span.SetAttributes(attribute.String(otelhelper.TemplateIDKey, template.ID))
	s.logger.InfoContext(ctx, "Template created", "template_id", template.ID, "name", template.Name)
	s.publish(ctx, template.ID, events.NewTemplateChanged(events.TemplateCreatedEvent, template, ""))

	return template, nil
}

// AddField validates input and appends a new field. Nothing is stored when
// validation fails.
func (s *Template) AddField(ctx context.Context, templateID string, input FieldInput) (*models.FieldDefinition, error) {
	ctx, span := s.span(ctx, "template.add_field", attribute.String(otelhelper.TemplateIDKey, templateID))
	defer span.End()

	field := models.FieldDefinition{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(input.Name),
		Unit:     input.Unit,
		SensorID: input.SensorID,
		Role:     input.Role,
		MinValue: input.MinValue,
		MaxValue: input.MaxValue,
	}

	if field.SensorID != nil && *field.SensorID == "" {
		field.SensorID = nil
	}

	err := field.Validate()
	if err != nil {
		return nil, fail(span, NewValidationError("add_field", CodeInvalidField, err.Error(), err))
	}

	if field.SensorID != nil {
		sensor, ok := s.sensors.Lookup(field.SensorID)
		if !ok {
			return nil, fail(span, NewValidationError("add_field", CodeInvalidField,
				fmt.Sprintf("unknown sensor %q", *field.SensorID), nil))
		}

		if field.Unit == "" {
			field.Unit = sensor.Unit
		}
	}

	unlock := s.locks.Lock(templateID)
	defer unlock()

	template, err := s.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, fail(span, err)
	}

	template.Fields = append(template.Fields, field.Clone())

	err = s.persistence.TemplateRepository().Save(ctx, template)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to save template: %w", err))
	}

	s.logger.InfoContext(ctx, "Field added", "template_id", templateID, "field_id", field.ID, "role", field.Role)
	s.publish(ctx, templateID, events.NewTemplateChanged(events.TemplateUpdatedEvent, template, field.ID))

	return &field, nil
}

// RemoveField deletes a field from the template. Crop instances keep their
// snapshot of it.
func (s *Template) RemoveField(ctx context.Context, templateID, fieldID string) error {
	ctx, span := s.span(ctx, "template.remove_field",
		attribute.String(otelhelper.TemplateIDKey, templateID), attribute.String(otelhelper.FieldIDKey, fieldID))
	defer span.End()

	unlock := s.locks.Lock(templateID)
	defer unlock()

	template, err := s.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return fail(span, err)
	}

	if !template.RemoveField(fieldID) {
		return fail(span, fmt.Errorf("%w: %s in template %s", ErrFieldNotFound, fieldID, templateID))
	}

	err = s.persistence.TemplateRepository().Save(ctx, template)
	if err != nil {
		return fail(span, fmt.Errorf("failed to save template: %w", err))
	}

	s.logger.InfoContext(ctx, "Field removed", "template_id", templateID, "field_id", fieldID)
	s.publish(ctx, templateID, events.NewTemplateChanged(events.TemplateUpdatedEvent, template, fieldID))

	return nil
}

// Update replaces the template name and/or description.
func (s *Template) Update(ctx context.Context, templateID string, patch TemplatePatch) (*models.OperationTemplate, error) {
	ctx, span := s.span(ctx, "template.update", attribute.String(otelhelper.TemplateIDKey, templateID))
	defer span.End()

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fail(span, NewValidationError("update_template", CodeInvalidTemplate, "template name is required", nil))
	}

	unlock := s.locks.Lock(templateID)
	defer unlock()

	template, err := s.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, fail(span, err)
	}

	if patch.Name != nil {
		template.Name = strings.TrimSpace(*patch.Name)
	}

	if patch.Description != nil {
		template.Description = *patch.Description
	}

	err = s.persistence.TemplateRepository().Save(ctx, template)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to save template: %w", err))
	}

	s.publish(ctx, templateID, events.NewTemplateChanged(events.TemplateUpdatedEvent, template, ""))

	return template, nil
}

// Delete removes the template. Instances already attached to crops are kept.
func (s *Template) Delete(ctx context.Context, templateID string) error {
	ctx, span := s.span(ctx, "template.delete", attribute.String(otelhelper.TemplateIDKey, templateID))
	defer span.End()

	unlock := s.locks.Lock(templateID)
	defer unlock()

	template, err := s.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return fail(span, err)
	}

	err = s.persistence.TemplateRepository().Delete(ctx, templateID)
	if err != nil {
		return fail(span, err)
	}

	s.logger.InfoContext(ctx, "Template deleted", "template_id", templateID)
	s.publish(ctx, templateID, events.NewTemplateChanged(events.TemplateDeletedEvent, template, ""))

	return nil
}

// ListByRole returns the template's fields with role, in insertion order.
func (s *Template) ListByRole(ctx context.Context, templateID string, role models.FieldRole) ([]models.FieldDefinition, error) {
	if !role.Valid() {
		return nil, NewValidationError("list_by_role", CodeInvalidField, fmt.Sprintf("invalid field role %q", role), nil)
	}

	template, err := s.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	return template.FieldsByRole(role), nil
}

// Seed stores catalog templates that are not stored yet, keeping their ids.
func (s *Template) Seed(ctx context.Context, templates []models.OperationTemplate) error {
	for idx := range templates {
		template := templates[idx].Clone()

		_, err := s.persistence.TemplateRepository().GetByID(ctx, template.ID)
		if err == nil {
			continue
		}

		if !persistence.IsNotFound(err) {
			return fmt.Errorf("failed to check template %s: %w", template.ID, err)
		}

		for _, field := range template.Fields {
			err := field.Validate()
			if err != nil {
				return fmt.Errorf("seed template %s: %w", template.ID, err)
			}

			if field.SensorID != nil && !s.sensors.Contains(*field.SensorID) {
				return fmt.Errorf("%w: seed template %s references unknown sensor %q",
					ErrValidationFailed, template.ID, *field.SensorID)
			}
		}

		err = s.persistence.TemplateRepository().Save(ctx, template)
		if err != nil {
			return fmt.Errorf("failed to seed template %s: %w", template.ID, err)
		}

		s.logger.InfoContext(ctx, "Template seeded", "template_id", template.ID, "name", template.Name)
	}

	return nil
}
