package web

import (
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	templates, err := h.Templates.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(templates)
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	template, err := h.Templates.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(template)
}

func (h *APIHandlers) CreateTemplate(c fiber.Ctx) error {
	var req CreateTemplateRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	created, err := h.Templates.Create(c.Context(), req.Name, req.Description)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateTemplate(c fiber.Ctx) error {
	var req UpdateTemplateRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	updated, err := h.Templates.Update(c.Context(), c.Params("id"), services.TemplatePatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteTemplate(c fiber.Ctx) error {
	if err := h.Templates.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetTemplateFields lists the template's fields, optionally only one role.
func (h *APIHandlers) GetTemplateFields(c fiber.Ctx) error {
	role := c.Query("role")
	if role != "" {
		fields, err := h.Templates.ListByRole(c.Context(), c.Params("id"), models.FieldRole(role))
		if err != nil {
			return handleServiceError(c, err)
		}

		return c.JSON(fields)
	}

	template, err := h.Templates.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(template.Fields)
}

func (h *APIHandlers) AddTemplateField(c fiber.Ctx) error {
	var req AddFieldRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	field, err := h.Templates.AddField(c.Context(), c.Params("id"), services.FieldInput{
		Name:     req.Name,
		Unit:     req.Unit,
		SensorID: req.SensorID,
		Role:     models.FieldRole(req.Role),
		MinValue: req.MinValue,
		MaxValue: req.MaxValue,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(field)
}

func (h *APIHandlers) DeleteTemplateField(c fiber.Ctx) error {
	if err := h.Templates.RemoveField(c.Context(), c.Params("id"), c.Params("fieldId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
