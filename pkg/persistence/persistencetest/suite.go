// Package persistencetest holds the behaviour every persistence backend must
// share, run by each backend's own tests.
package persistencetest

import (
	"testing"
	"time"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/persistence"
	"github.com/dukex/agroops/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the template, crop and task repositories of p.
func Run(t *testing.T, p persistence.Persistence) {
	t.Helper()

	t.Run("templates", func(t *testing.T) { testTemplates(t, p.TemplateRepository()) })
	t.Run("crops", func(t *testing.T) { testCrops(t, p.CropRepository()) })
	t.Run("tasks", func(t *testing.T) { testTasks(t, p.TaskRepository()) })
	t.Run("health", func(t *testing.T) { require.NoError(t, p.HealthCheck(t.Context())) })
}

func testTemplates(t *testing.T, repo persistence.TemplateRepository) {
	ctx := t.Context()

	_, err := repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrTemplateNotFound)
	require.ErrorIs(t, err, models.ErrNotFound)

	template := testutil.CreateTestTemplate(testutil.WithTemplateID("tpl-1"))
	require.NoError(t, repo.Save(ctx, template))
	assert.False(t, template.CreatedAt.IsZero())
	assert.False(t, template.UpdatedAt.IsZero())

	stored, err := repo.GetByID(ctx, "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "Sowing", stored.Name)
	require.Len(t, stored.Fields, 2)
	assert.Equal(t, models.SensorSoilTemperature, *stored.Fields[0].SensorID)
	assert.InDelta(t, 18.0, *stored.Fields[0].MaxValue, 1e-9)
	assert.Nil(t, stored.Fields[1].SensorID)

	// Returned records are copies.
	stored.Name = "changed"
	*stored.Fields[0].MinValue = 100
	again, err := repo.GetByID(ctx, "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "Sowing", again.Name)
	assert.InDelta(t, 8.0, *again.Fields[0].MinValue, 1e-9)

	second := testutil.CreateTestTemplate(testutil.WithTemplateID("tpl-2"))
	second.Name = "Spraying"
	require.NoError(t, repo.Save(ctx, second))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "tpl-1", all[0].ID)
	assert.Equal(t, "tpl-2", all[1].ID)

	require.NoError(t, repo.Delete(ctx, "tpl-1"))
	require.ErrorIs(t, repo.Delete(ctx, "tpl-1"), persistence.ErrTemplateNotFound)

	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Spraying", all[0].Name)
}

func testCrops(t *testing.T, repo persistence.CropRepository) {
	ctx := t.Context()

	crop := &models.Crop{ID: "crop-1", Name: "North wheat", Variety: "Moskovskaya 56", Kind: "winter-wheat"}
	_, err := crop.Attach(testutil.CreateTestTemplate(testutil.WithTemplateID("tpl-1")))
	require.NoError(t, err)

	op, _ := crop.Operation("tpl-1")
	require.True(t, op.SetFieldValue("f-depth", "4"))

	require.NoError(t, repo.Save(ctx, crop))

	stored, err := repo.GetByID(ctx, "crop-1")
	require.NoError(t, err)
	assert.Equal(t, "winter-wheat", stored.Kind)
	require.Len(t, stored.Operations, 1)

	entry, ok := stored.Operations[0].Entry("f-depth")
	require.True(t, ok)
	assert.Equal(t, "4", entry.Value)

	entry, ok = stored.Operations[0].Entry("f-temp")
	require.True(t, ok)
	assert.Empty(t, entry.Value)
	assert.Equal(t, models.RoleStartCondition, entry.Role)

	stored.Detach("tpl-1")
	again, err := repo.GetByID(ctx, "crop-1")
	require.NoError(t, err)
	assert.Len(t, again.Operations, 1)

	_, err = repo.GetByID(ctx, "crop-2")
	require.ErrorIs(t, err, persistence.ErrCropNotFound)

	require.NoError(t, repo.Delete(ctx, "crop-1"))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testTasks(t *testing.T, repo persistence.TaskRepository) {
	ctx := t.Context()
	due := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	later := testutil.CreateTestTask(testutil.WithTaskID("task-2"), func(task *models.Task) {
		task.Title, task.Type, task.DueDate = "Harvest", "harvesting", due.AddDate(0, 3, 0)
	})
	sooner := testutil.CreateTestTask(testutil.WithTaskID("task-1"), testutil.OnField("field1", "winter-wheat"))

	require.NoError(t, repo.Save(ctx, later))
	require.NoError(t, repo.Save(ctx, sooner))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "task-1", all[0].ID)
	assert.True(t, all[0].DueDate.Equal(due))

	require.NoError(t, sooner.Transition(models.TaskStatusInProgress))
	require.NoError(t, repo.Save(ctx, sooner))

	stored, err := repo.GetByID(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, stored.Status)
	assert.Equal(t, "winter-wheat", stored.CropKind)

	_, err = repo.GetByID(ctx, "task-3")
	require.ErrorIs(t, err, persistence.ErrTaskNotFound)
}
