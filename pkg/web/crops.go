package web

import (
	"github.com/dukex/agroops/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetCrops(c fiber.Ctx) error {
	crops, err := h.Crops.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(crops)
}

func (h *APIHandlers) GetCrop(c fiber.Ctx) error {
	crop, err := h.Crops.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(crop)
}

func (h *APIHandlers) CreateCrop(c fiber.Ctx) error {
	var req CreateCropRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	crop, err := h.Crops.Create(c.Context(), services.CropInput{
		Name:    req.Name,
		Variety: req.Variety,
		Kind:    req.Kind,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(crop)
}

func (h *APIHandlers) UpdateCrop(c fiber.Ctx) error {
	var req UpdateCropRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	crop, err := h.Crops.Update(c.Context(), c.Params("id"), services.CropPatch{
		Name:    req.Name,
		Variety: req.Variety,
		Kind:    req.Kind,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(crop)
}

func (h *APIHandlers) DeleteCrop(c fiber.Ctx) error {
	if err := h.Crops.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetCropOperations(c fiber.Ctx) error {
	instances, err := h.Crops.ListInstances(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(instances)
}

func (h *APIHandlers) GetAvailableTemplates(c fiber.Ctx) error {
	templates, err := h.Crops.AvailableTemplates(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(templates)
}

func (h *APIHandlers) AttachOperation(c fiber.Ctx) error {
	var req AttachRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	instance, err := h.Crops.Attach(c.Context(), c.Params("id"), req.TemplateID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(instance)
}

func (h *APIHandlers) DetachOperation(c fiber.Ctx) error {
	if err := h.Crops.Detach(c.Context(), c.Params("id"), c.Params("templateId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SetFieldValue(c fiber.Ctx) error {
	var req SetFieldValueRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	err := h.Crops.SetFieldValue(c.Context(), c.Params("id"), c.Params("templateId"), c.Params("fieldId"), req.Value)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) FillFromReading(c fiber.Ctx) error {
	var req FillRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	instance, err := h.Crops.FillFromReading(c.Context(), c.Params("id"), c.Params("templateId"), req.FieldID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(instance)
}

func (h *APIHandlers) GetReadiness(c fiber.Ctx) error {
	readiness, err := h.Crops.CheckStartConditions(c.Context(), c.Params("id"), c.Params("templateId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(readiness)
}
