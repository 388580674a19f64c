package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dukex/agroops/pkg/eventbus"
	"github.com/dukex/agroops/pkg/events"
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/persistence/memory"
	"github.com/dukex/agroops/pkg/readings"
	"github.com/dukex/agroops/pkg/sensors"
	"github.com/dukex/agroops/pkg/services"
	"github.com/dukex/agroops/pkg/tasktypes"
	"github.com/dukex/agroops/pkg/testutil"
	"github.com/dukex/agroops/pkg/threshold"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]events.EventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.GetType())
	}

	return types
}

type fixture struct {
	templates *services.Template
	crops     *services.Crop
	tasks     *services.Task
	readings  *readings.Static
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	registry, err := sensors.NewRegistry([]models.Sensor{
		{ID: models.SensorSoilTemperature, Name: "Soil temperature", Unit: "°C"},
		{ID: models.SensorSoilMoisture, Name: "Soil moisture", Unit: "%"},
		{ID: models.SensorSoilPh, Name: "Soil pH", Unit: "pH"},
		{ID: "wind_speed", Name: "Wind speed", Unit: "m/s"},
	})
	require.NoError(t, err)

	source, err := readings.NewStatic([]models.FieldReading{
		{FieldID: "field1", Name: "Field #1", CurrentTemp: 12, CurrentMoisture: 65, CurrentPh: 6.5},
	})
	require.NoError(t, err)

	taskTypes, err := tasktypes.NewStore(testutil.TaskTypes())
	require.NoError(t, err)

	store := memory.NewPersistence()
	publisher := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		templates: services.NewTemplate(store, registry, publisher, logger),
		crops:     services.NewCrop(store, source, threshold.NewClassifier(), publisher, logger),
		tasks:     services.NewTask(store, taskTypes, publisher, logger),
		readings:  source,
		publisher: publisher,
	}
}

// sowing creates the Sowing template: a bounded soil temperature start
// condition, an unbounded moisture start condition and a manual depth.
func (f *fixture) sowing(t *testing.T) *models.OperationTemplate {
	t.Helper()

	ctx := t.Context()

	template, err := f.templates.Create(ctx, "Sowing", "Sowing of agricultural crops")
	require.NoError(t, err)

	_, err = f.templates.AddField(ctx, template.ID, services.FieldInput{
		Name: "Soil temperature", SensorID: ptr(models.SensorSoilTemperature), Role: models.RoleStartCondition,
		MinValue: ptr(8.0), MaxValue: ptr(18.0),
	})
	require.NoError(t, err)

	_, err = f.templates.AddField(ctx, template.ID, services.FieldInput{
		Name: "Soil moisture", SensorID: ptr(models.SensorSoilMoisture), Role: models.RoleStartCondition,
	})
	require.NoError(t, err)

	_, err = f.templates.AddField(ctx, template.ID, services.FieldInput{
		Name: "Seeding depth", Unit: "cm", Role: models.RoleExecution,
	})
	require.NoError(t, err)

	template, err = f.templates.Get(ctx, template.ID)
	require.NoError(t, err)

	return template
}

func (f *fixture) crop(t *testing.T) *models.Crop {
	t.Helper()

	crop, err := f.crops.Create(t.Context(), services.CropInput{Name: "North wheat", Variety: "Moskovskaya 56", Kind: "winter-wheat"})
	require.NoError(t, err)

	return crop
}
