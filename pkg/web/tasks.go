package web

import (
	"context"

	"github.com/dukex/agroops/pkg/evaluation"
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetTasks(c fiber.Ctx) error {
	tasks, err := h.Tasks.List(c.Context(), services.TaskFilter{
		Status: models.TaskStatus(c.Query("status")),
		Field:  c.Query("field"),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tasks)
}

func (h *APIHandlers) GetTask(c fiber.Ctx) error {
	task, err := h.Tasks.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

// CreateTask stores a task from raw input or from a task draft. A draft used
// to create a task is discarded.
func (h *APIHandlers) CreateTask(c fiber.Ctx) error {
	var req CreateTaskRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	input := services.TaskInput{
		Title:    req.Title,
		Type:     req.Type,
		Assignee: req.Assignee,
		Field:    req.Field,
		CropKind: req.CropKind,
		DueDate:  req.DueDate,
		Notes:    req.Notes,
	}

	if req.DraftID != "" {
		draft, err := h.Drafts.Get(c.Context(), req.DraftID)
		if err != nil {
			return handleServiceError(c, err)
		}

		if draft.State == evaluation.StateEmpty {
			return badRequest(c, "task draft has no task type selected")
		}

		input.Type = orDefault(input.Type, draft.TaskType)
		input.CropKind = orDefault(input.CropKind, draft.CropKind)
		input.Field = orDefault(input.Field, draft.FieldID)
	}

	task, err := h.Tasks.Create(c.Context(), input)
	if err != nil {
		return handleServiceError(c, err)
	}

	if req.DraftID != "" {
		// The draft may already be gone; the task exists either way.
		_ = h.Drafts.Delete(c.Context(), req.DraftID)
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *APIHandlers) UpdateTaskStatus(c fiber.Ctx) error {
	var req UpdateTaskStatusRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	task, err := h.Tasks.UpdateStatus(c.Context(), c.Params("id"), models.TaskStatus(req.Status))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) DeleteTask(c fiber.Ctx) error {
	if err := h.Tasks.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateDraft(c fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(h.Drafts.Create(c.Context()))
}

func (h *APIHandlers) GetDraft(c fiber.Ctx) error {
	draft, err := h.Drafts.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(draft)
}

func (h *APIHandlers) DeleteDraft(c fiber.Ctx) error {
	if err := h.Drafts.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SelectDraftType(c fiber.Ctx) error {
	return h.selectDraft(c, h.Drafts.SelectType)
}

func (h *APIHandlers) SelectDraftCrop(c fiber.Ctx) error {
	return h.selectDraft(c, h.Drafts.SelectCrop)
}

func (h *APIHandlers) SelectDraftField(c fiber.Ctx) error {
	return h.selectDraft(c, h.Drafts.SelectField)
}

type selectFunc func(ctx context.Context, id, value string) (*evaluation.Session, error)

func (h *APIHandlers) selectDraft(c fiber.Ctx, apply selectFunc) error {
	var req SelectionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	draft, err := apply(c.Context(), c.Params("id"), req.ID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(draft)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
