package web

import "github.com/gofiber/fiber/v3"

// Register mounts every API route on router.
func Register(router fiber.Router, h *APIHandlers) {
	router.Get("/health", h.HealthCheck)

	router.Get("/sensors", h.GetSensors)
	router.Get("/profiles", h.GetProfiles)
	router.Get("/profiles/:kind", h.GetProfile)
	router.Get("/task-types", h.GetTaskTypes)
	router.Get("/task-types/:id", h.GetTaskType)
	router.Put("/task-types/:id/params", h.UpdateTaskTypeParams)
	router.Get("/classify", h.Classify)

	r := router.Group("/readings")
	r.Get("/", h.GetReadings)
	r.Get("/:fieldId", h.GetReading)
	r.Get("/:fieldId/advisories", h.GetAdvisories)

	t := router.Group("/templates")
	t.Get("/", h.GetTemplates)
	t.Post("/", h.CreateTemplate)
	t.Get("/:id", h.GetTemplate)
	t.Patch("/:id", h.UpdateTemplate)
	t.Delete("/:id", h.DeleteTemplate)
	t.Get("/:id/fields", h.GetTemplateFields)
	t.Post("/:id/fields", h.AddTemplateField)
	t.Delete("/:id/fields/:fieldId", h.DeleteTemplateField)

	c := router.Group("/crops")
	c.Get("/", h.GetCrops)
	c.Post("/", h.CreateCrop)
	c.Get("/:id", h.GetCrop)
	c.Patch("/:id", h.UpdateCrop)
	c.Delete("/:id", h.DeleteCrop)
	c.Get("/:id/available-templates", h.GetAvailableTemplates)
	c.Get("/:id/operations", h.GetCropOperations)
	c.Post("/:id/operations", h.AttachOperation)
	c.Delete("/:id/operations/:templateId", h.DetachOperation)
	c.Put("/:id/operations/:templateId/fields/:fieldId", h.SetFieldValue)
	c.Post("/:id/operations/:templateId/fill", h.FillFromReading)
	c.Get("/:id/operations/:templateId/readiness", h.GetReadiness)

	d := router.Group("/task-drafts")
	d.Post("/", h.CreateDraft)
	d.Get("/:id", h.GetDraft)
	d.Delete("/:id", h.DeleteDraft)
	d.Put("/:id/type", h.SelectDraftType)
	d.Put("/:id/crop", h.SelectDraftCrop)
	d.Put("/:id/field", h.SelectDraftField)

	k := router.Group("/tasks")
	k.Get("/", h.GetTasks)
	k.Post("/", h.CreateTask)
	k.Get("/:id", h.GetTask)
	k.Patch("/:id/status", h.UpdateTaskStatus)
	k.Delete("/:id", h.DeleteTask)
}
