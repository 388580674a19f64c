package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/agroops/pkg/evaluation"
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/profiles"
	"github.com/dukex/agroops/pkg/readings"
	"github.com/dukex/agroops/pkg/sensors"
	"github.com/dukex/agroops/pkg/services"
	"github.com/dukex/agroops/pkg/tasktypes"
	"github.com/dukex/agroops/pkg/threshold"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// Dependencies are the components the handlers serve.
type Dependencies struct {
	Templates  *services.Template
	Crops      *services.Crop
	Tasks      *services.Task
	Evaluator  *evaluation.Evaluator
	Drafts     *evaluation.SessionStore
	Sensors    *sensors.Registry
	Profiles   *profiles.Store
	TaskTypes  *tasktypes.Store
	Readings   readings.Source
	Classifier threshold.Classifier
}

type APIHandlers struct {
	Dependencies

	validator *validator.Validate
}

func NewAPIHandlers(deps Dependencies, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		Dependencies: deps,
		validator:    validator,
	}
}

// bind decodes the JSON body into req and validates it. When it reports
// false the problem response is already written.
func (h *APIHandlers) bind(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return false, badRequest(c, err.Error())
	}

	return true, nil
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.Templates.HealthCheck(c.Context())

	readingsCheck, readOk := "Readings source is healthy", true
	if err := h.Readings.HealthCheck(c.Context()); err != nil {
		readingsCheck, readOk = "Readings source unavailable: "+err.Error(), false
	}

	status := "unhealthy"
	message := "agroops API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk && readOk {
		status = "healthy"
		message = "agroops API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
			"readings":   readingsCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetSensors(c fiber.Ctx) error {
	return c.JSON(h.Sensors.List())
}

func (h *APIHandlers) GetProfiles(c fiber.Ctx) error {
	return c.JSON(h.Profiles.List())
}

func (h *APIHandlers) GetProfile(c fiber.Ctx) error {
	profile, err := h.Profiles.Get(c.Params("kind"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(profile)
}

func (h *APIHandlers) GetTaskTypes(c fiber.Ctx) error {
	return c.JSON(h.TaskTypes.List())
}

func (h *APIHandlers) GetTaskType(c fiber.Ctx) error {
	taskType, err := h.TaskTypes.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(taskType)
}

// UpdateTaskTypeParams replaces the parameter table of a task type. Drafts
// that already selected the type keep the table they were given.
func (h *APIHandlers) UpdateTaskTypeParams(c fiber.Ctx) error {
	var req UpdateTaskParamsRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	taskType, err := h.TaskTypes.SetParams(c.Params("id"), req.toModels())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(taskType)
}

func (h *APIHandlers) GetReadings(c fiber.Ctx) error {
	list, err := h.Readings.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(list)
}

func (h *APIHandlers) GetReading(c fiber.Ctx) error {
	reading, err := h.Readings.Get(c.Context(), c.Params("fieldId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(reading)
}

// GetAdvisories evaluates a field against the profile named by crop_kind.
func (h *APIHandlers) GetAdvisories(c fiber.Ctx) error {
	cropKind := c.Query("crop_kind")
	if cropKind == "" {
		return badRequest(c, "crop_kind query parameter is required")
	}

	diagnostics, err := h.Evaluator.ListAdvisories(c.Context(), c.Params("fieldId"), cropKind)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(diagnostics)
}

// Classify rates a single value against an ad hoc range, or against the
// parameter table of a task type when task_type and param are given.
// optimal defaults to the middle of an ad hoc range.
func (h *APIHandlers) Classify(c fiber.Ctx) error {
	value, err := threshold.ParseValue(c.Query("value"))
	if err != nil {
		return badRequest(c, "value: "+err.Error())
	}

	var r models.Range

	if taskType := c.Query("task_type"); taskType != "" {
		key := c.Query("param")
		if key == "" {
			return badRequest(c, "param is required with task_type")
		}

		param, err := h.TaskTypes.Param(taskType, key)
		if err != nil {
			return handleServiceError(c, err)
		}

		r = param.Range
	} else {
		r, err = queryRange(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
	}

	return c.JSON(ClassifyResponse{
		Value:  value,
		Range:  r,
		Status: h.Classifier.Classify(value, r),
	})
}

func queryRange(c fiber.Ctx) (models.Range, error) {
	r := models.Range{}

	for _, bound := range []struct {
		name   string
		target *float64
	}{
		{"min", &r.Min},
		{"max", &r.Max},
	} {
		var err error

		*bound.target, err = strconv.ParseFloat(c.Query(bound.name), 64)
		if err != nil {
			return r, errors.New(bound.name + " must be a number")
		}
	}

	r.Optimal = (r.Min + r.Max) / 2
	if raw := c.Query("optimal"); raw != "" {
		var err error

		r.Optimal, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return r, errors.New("optimal must be a number")
		}
	}

	return r, r.Validate()
}
