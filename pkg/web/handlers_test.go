package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/agroops/pkg/evaluation"
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/persistence/memory"
	"github.com/dukex/agroops/pkg/profiles"
	"github.com/dukex/agroops/pkg/readings"
	"github.com/dukex/agroops/pkg/sensors"
	"github.com/dukex/agroops/pkg/services"
	"github.com/dukex/agroops/pkg/tasktypes"
	"github.com/dukex/agroops/pkg/testutil"
	"github.com/dukex/agroops/pkg/threshold"
	"github.com/dukex/agroops/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry, err := sensors.NewRegistry([]models.Sensor{
		{ID: models.SensorSoilTemperature, Name: "Soil temperature", Unit: "°C"},
		{ID: models.SensorSoilMoisture, Name: "Soil moisture", Unit: "%"},
	})
	require.NoError(t, err)

	store, err := profiles.NewStore([]models.OptimalConditionProfile{testutil.WinterWheat()})
	require.NoError(t, err)

	source, err := readings.NewStatic([]models.FieldReading{
		{FieldID: "field1", Name: "Field #1", CurrentTemp: 12, CurrentMoisture: 65, CurrentPh: 6.5},
	})
	require.NoError(t, err)

	taskTypes, err := tasktypes.NewStore(testutil.TaskTypes())
	require.NoError(t, err)

	persistence := memory.NewPersistence()
	classifier := threshold.NewClassifier()
	evaluator := evaluation.NewEvaluator(source, store, threshold.NewAdvisor(classifier, language.English), logger)

	handlers := web.NewAPIHandlers(web.Dependencies{
		Templates:  services.NewTemplate(persistence, registry, nil, logger),
		Crops:      services.NewCrop(persistence, source, classifier, nil, logger),
		Tasks:      services.NewTask(persistence, taskTypes, nil, logger),
		Evaluator:  evaluator,
		Drafts:     evaluation.NewSessionStore(evaluator, taskTypes, logger),
		Sensors:    registry,
		Profiles:   store,
		TaskTypes:  taskTypes,
		Readings:   source,
		Classifier: classifier,
	}, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	web.Register(app, handlers)

	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))

	return v
}

func TestAPI_Catalog(t *testing.T) {
	app := setupTestApp(t)

	status, body := do(t, app, http.MethodGet, "/sensors", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Sensor](t, body), 2)

	status, body = do(t, app, http.MethodGet, "/profiles/winter-wheat", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Winter wheat", decode[models.OptimalConditionProfile](t, body).Name)

	status, body = do(t, app, http.MethodGet, "/profiles/barley", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "profile_not_found", decode[map[string]any](t, body)["type"])

	status, body = do(t, app, http.MethodGet, "/task-types", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.TaskType](t, body), 2)

	status, _ = do(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_Advisories(t *testing.T) {
	app := setupTestApp(t)

	status, body := do(t, app, http.MethodGet, "/readings/field1/advisories?crop_kind=winter-wheat", nil)
	require.Equal(t, http.StatusOK, status)

	diagnostics := decode[evaluation.Diagnostics](t, body)
	assert.True(t, diagnostics.Blocking)
	require.Len(t, diagnostics.Advisories, 3)
	assert.Equal(t, models.ParameterSoilTemp, diagnostics.Advisories[0].Parameter)
	assert.Equal(t, models.StatusCritical, diagnostics.Advisories[0].Status)

	tests := []struct {
		path   string
		status int
	}{
		{"/readings/field1/advisories", http.StatusBadRequest},
		{"/readings/field1/advisories?crop_kind=barley", http.StatusNotFound},
		{"/readings/field9/advisories?crop_kind=winter-wheat", http.StatusNotFound},
		{"/readings/field9", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, _ := do(t, app, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestAPI_Classify(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		query  string
		status int
		want   models.Status
	}{
		{"value=13&min=8&max=18&optimal=14", http.StatusOK, models.StatusOptimal},
		{"value=8&min=8&max=18&optimal=14", http.StatusOK, models.StatusAcceptable},
		{"value=20&min=8&max=18&optimal=14", http.StatusOK, models.StatusCritical},
		{"value=13&min=8&max=18", http.StatusOK, models.StatusOptimal},
		{"value=6,5&min=5&max=8", http.StatusOK, models.StatusOptimal},
		{"value=warm&min=8&max=18", http.StatusBadRequest, ""},
		{"value=13&min=18&max=8", http.StatusBadRequest, ""},
		{"value=13&max=8", http.StatusBadRequest, ""},
		{"value=15&task_type=harvesting&param=moisture", http.StatusOK, models.StatusOptimal},
		{"value=22&task_type=harvesting&param=moisture", http.StatusOK, models.StatusCritical},
		{"value=15&task_type=harvesting", http.StatusBadRequest, ""},
		{"value=15&task_type=harvesting&param=yield", http.StatusNotFound, ""},
		{"value=15&task_type=plowing&param=moisture", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			status, body := do(t, app, http.MethodGet, "/classify?"+tt.query, nil)
			require.Equal(t, tt.status, status, string(body))

			if tt.status == http.StatusOK {
				assert.Equal(t, tt.want, decode[web.ClassifyResponse](t, body).Status)
			}
		})
	}
}

func TestAPI_TaskTypeParams(t *testing.T) {
	app := setupTestApp(t)

	status, body := do(t, app, http.MethodGet, "/task-types/harvesting", nil)
	require.Equal(t, http.StatusOK, status)

	harvesting := decode[models.TaskType](t, body)
	require.Len(t, harvesting.Params, 1)
	assert.Equal(t, models.Range{Min: 12, Max: 20, Optimal: 15}, harvesting.Params[0].Range)

	status, _ = do(t, app, http.MethodGet, "/task-types/plowing", nil)
	assert.Equal(t, http.StatusNotFound, status)

	tests := []struct {
		name   string
		id     string
		body   any
		status int
	}{
		{
			name:   "missing bounds",
			id:     "harvesting",
			body:   map[string]any{"params": []map[string]any{{"key": "moisture", "label": "Grain moisture"}}},
			status: http.StatusBadRequest,
		},
		{
			name: "inverted range",
			id:   "harvesting",
			body: web.UpdateTaskParamsRequest{Params: []web.TaskParameterRequest{
				{Key: "moisture", Label: "Grain moisture", Min: ptr(20.0), Max: ptr(12.0)},
			}},
			status: http.StatusBadRequest,
		},
		{
			name: "optimal outside range",
			id:   "harvesting",
			body: web.UpdateTaskParamsRequest{Params: []web.TaskParameterRequest{
				{Key: "moisture", Label: "Grain moisture", Min: ptr(12.0), Max: ptr(20.0), Optimal: ptr(25.0)},
			}},
			status: http.StatusBadRequest,
		},
		{
			name: "unknown task type",
			id:   "plowing",
			body: web.UpdateTaskParamsRequest{Params: []web.TaskParameterRequest{
				{Key: "depth", Label: "Depth", Min: ptr(10.0), Max: ptr(20.0)},
			}},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, http.MethodPut, "/task-types/"+tt.id+"/params", tt.body)
			assert.Equal(t, tt.status, status, string(body))
		})
	}

	status, body = do(t, app, http.MethodPut, "/task-types/harvesting/params", web.UpdateTaskParamsRequest{
		Params: []web.TaskParameterRequest{
			{Key: "moisture", Label: "Grain moisture", Unit: "%", Min: ptr(13.0), Max: ptr(17.0)},
		},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	updated := decode[models.TaskType](t, body)
	assert.Equal(t, models.Range{Min: 13, Max: 17, Optimal: 15}, updated.Params[0].Range)

	status, body = do(t, app, http.MethodGet, "/classify?value=18&task_type=harvesting&param=moisture", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.StatusCritical, decode[web.ClassifyResponse](t, body).Status)

	status, body = do(t, app, http.MethodPost, "/task-drafts", nil)
	require.Equal(t, http.StatusCreated, status)

	draft := decode[evaluation.Session](t, body)

	status, body = do(t, app, http.MethodPut, "/task-drafts/"+draft.ID+"/type", web.SelectionRequest{ID: "harvesting"})
	require.Equal(t, http.StatusOK, status)

	draft = decode[evaluation.Session](t, body)
	require.Len(t, draft.Parameters, 1)
	assert.InDelta(t, 17.0, draft.Parameters[0].Range.Max, 0)
}

func TestAPI_TemplateLifecycle(t *testing.T) {
	app := setupTestApp(t)

	status, body := do(t, app, http.MethodPost, "/templates", web.CreateTemplateRequest{Name: "Sowing"})
	require.Equal(t, http.StatusCreated, status)

	template := decode[models.OperationTemplate](t, body)
	assert.NotEmpty(t, template.ID)

	sensor := models.SensorSoilTemperature
	status, body = do(t, app, http.MethodPost, "/templates/"+template.ID+"/fields", web.AddFieldRequest{
		Name: "Soil temperature", SensorID: &sensor, Role: "start_condition", MinValue: ptr(8.0), MaxValue: ptr(25.0),
	})
	require.Equal(t, http.StatusCreated, status)

	field := decode[models.FieldDefinition](t, body)
	assert.Equal(t, "°C", field.Unit)

	status, _ = do(t, app, http.MethodPost, "/templates/"+template.ID+"/fields", web.AddFieldRequest{
		Name: "Broken", Role: "start_condition", MinValue: ptr(9.0), MaxValue: ptr(1.0),
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/templates/"+template.ID+"/fields", web.AddFieldRequest{
		Name: "Depth", Role: "during",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, app, http.MethodGet, "/templates/"+template.ID+"/fields?role=execution", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.FieldDefinition](t, body))

	status, body = do(t, app, http.MethodGet, "/templates/"+template.ID+"/fields", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.FieldDefinition](t, body), 1)

	status, body = do(t, app, http.MethodPatch, "/templates/"+template.ID, web.UpdateTemplateRequest{Name: ptr("Sowing v2")})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Sowing v2", decode[models.OperationTemplate](t, body).Name)

	status, _ = do(t, app, http.MethodDelete, "/templates/"+template.ID+"/fields/"+field.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, http.MethodDelete, "/templates/"+template.ID+"/fields/"+field.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodDelete, "/templates/"+template.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, http.MethodGet, "/templates/"+template.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodPost, "/templates", map[string]string{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_CropOperations(t *testing.T) {
	app := setupTestApp(t)

	_, body := do(t, app, http.MethodPost, "/templates", web.CreateTemplateRequest{Name: "Sowing"})
	template := decode[models.OperationTemplate](t, body)

	sensor := models.SensorSoilTemperature
	_, body = do(t, app, http.MethodPost, "/templates/"+template.ID+"/fields", web.AddFieldRequest{
		Name: "Soil temperature", SensorID: &sensor, Role: "start_condition", MinValue: ptr(8.0), MaxValue: ptr(25.0),
	})
	field := decode[models.FieldDefinition](t, body)

	status, body := do(t, app, http.MethodPost, "/crops", web.CreateCropRequest{Name: "North wheat", Kind: "winter-wheat"})
	require.Equal(t, http.StatusCreated, status)

	crop := decode[models.Crop](t, body)
	operations := "/crops/" + crop.ID + "/operations"

	status, body = do(t, app, http.MethodPost, operations, web.AttachRequest{TemplateID: template.ID})
	require.Equal(t, http.StatusCreated, status)

	instance := decode[models.OperationInstance](t, body)
	require.Len(t, instance.Fields, 1)
	assert.Empty(t, instance.Fields[0].Value)

	status, body = do(t, app, http.MethodPost, operations, web.AttachRequest{TemplateID: template.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "duplicate_operation", decode[map[string]any](t, body)["type"])

	status, body = do(t, app, http.MethodGet, "/crops/"+crop.ID+"/available-templates", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.OperationTemplate](t, body))

	entry := operations + "/" + template.ID
	status, _ = do(t, app, http.MethodPut, entry+"/fields/"+field.ID, web.SetFieldValueRequest{Value: "12"})
	require.Equal(t, http.StatusNoContent, status)

	status, body = do(t, app, http.MethodGet, operations, nil)
	require.Equal(t, http.StatusOK, status)

	instances := decode[[]models.OperationInstance](t, body)
	require.Len(t, instances, 1)
	assert.Equal(t, "12", instances[0].Fields[0].Value)

	status, body = do(t, app, http.MethodGet, entry+"/readiness", nil)
	require.Equal(t, http.StatusOK, status)

	readiness := decode[services.Readiness](t, body)
	assert.True(t, readiness.Ready)

	status, _ = do(t, app, http.MethodPut, entry+"/fields/"+field.ID, web.SetFieldValueRequest{Value: "warm"})
	require.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, http.MethodGet, entry+"/readiness", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPut, entry+"/fields/"+field.ID, web.SetFieldValueRequest{})
	require.Equal(t, http.StatusNoContent, status)

	status, body = do(t, app, http.MethodPost, entry+"/fill", web.FillRequest{FieldID: "field1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "12", decode[models.OperationInstance](t, body).Fields[0].Value)

	status, _ = do(t, app, http.MethodDelete, entry, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, http.MethodGet, entry+"/readiness", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodPost, "/crops/missing/operations", web.AttachRequest{TemplateID: template.ID})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_TaskDraftToTask(t *testing.T) {
	app := setupTestApp(t)

	status, body := do(t, app, http.MethodPost, "/task-drafts", nil)
	require.Equal(t, http.StatusCreated, status)

	draft := decode[evaluation.Session](t, body)
	path := "/task-drafts/" + draft.ID

	status, _ = do(t, app, http.MethodPut, path+"/crop", web.SelectionRequest{ID: "winter-wheat"})
	assert.Equal(t, http.StatusBadRequest, status, "crop before type")

	status, _ = do(t, app, http.MethodPut, path+"/type", web.SelectionRequest{ID: "sowing"})
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodPut, path+"/crop", web.SelectionRequest{ID: "barley"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodPut, path+"/crop", web.SelectionRequest{ID: "winter-wheat"})
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, app, http.MethodPut, path+"/field", web.SelectionRequest{ID: "field1"})
	require.Equal(t, http.StatusOK, status)

	draft = decode[evaluation.Session](t, body)
	assert.Equal(t, evaluation.StateEvaluated, draft.State)
	require.NotNil(t, draft.Diagnostics)
	assert.True(t, draft.Diagnostics.Blocking)

	status, body = do(t, app, http.MethodPost, "/tasks", map[string]any{
		"draft_id": draft.ID,
		"assignee": "Ivanov",
		"due_date": "2026-04-15T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	task := decode[models.Task](t, body)
	assert.Equal(t, "sowing", task.Type)
	assert.Equal(t, "winter-wheat", task.CropKind)
	assert.Equal(t, "field1", task.Field)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	status, _ = do(t, app, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, status, "the draft is consumed")

	status, body = do(t, app, http.MethodPatch, "/tasks/"+task.ID+"/status", web.UpdateTaskStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.TaskStatusCompleted, decode[models.Task](t, body).Status)

	status, _ = do(t, app, http.MethodPatch, "/tasks/"+task.ID+"/status", web.UpdateTaskStatusRequest{Status: "pending"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, app, http.MethodGet, "/tasks?status=completed", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Task](t, body), 1)

	status, _ = do(t, app, http.MethodPost, "/tasks", map[string]any{"type": "sowing"})
	assert.Equal(t, http.StatusBadRequest, status, "due date is required")

	status, _ = do(t, app, http.MethodPost, "/tasks", map[string]any{"type": "plowing", "due_date": "2026-04-15T00:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func ptr[T any](v T) *T {
	return &v
}
