package services_test

import (
	"sync"
	"testing"

	"github.com/dukex/agroops/pkg/events"
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrop_Create(t *testing.T) {
	f := newFixture(t)

	crop := f.crop(t)
	assert.NotEmpty(t, crop.ID)
	assert.Equal(t, "winter-wheat", crop.Kind)
	assert.Empty(t, crop.Operations)

	_, err := f.crops.Create(t.Context(), services.CropInput{Name: ""})
	assert.True(t, services.IsValidationError(err))
}

func TestCrop_Attach_SnapshotIsIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	template := f.sowing(t)
	crop := f.crop(t)

	instance, err := f.crops.Attach(ctx, crop.ID, template.ID)
	require.NoError(t, err)
	assert.Equal(t, template.ID, instance.TemplateID)
	assert.Equal(t, "Sowing", instance.TemplateName)
	assert.False(t, instance.AttachedAt.IsZero())
	require.Len(t, instance.Fields, 3)

	for idx, entry := range instance.Fields {
		assert.Equal(t, template.Fields[idx].ID, entry.FieldID)
		assert.Empty(t, entry.Value)
	}

	// Edit the template every way possible.
	_, err = f.templates.AddField(ctx, template.ID, services.FieldInput{Name: "Row spacing", Role: models.RoleExecution})
	require.NoError(t, err)
	require.NoError(t, f.templates.RemoveField(ctx, template.ID, template.Fields[0].ID))
	_, err = f.templates.Update(ctx, template.ID, services.TemplatePatch{Name: ptr("Renamed")})
	require.NoError(t, err)

	instances, err := f.crops.ListInstances(ctx, crop.ID)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "Sowing", instances[0].TemplateName)
	require.Len(t, instances[0].Fields, 3)
	assert.Equal(t, "Soil temperature", instances[0].Fields[0].FieldName)
	assert.InDelta(t, 18.0, *instances[0].Fields[0].MaxValue, 1e-9)

	// Deleting the template keeps the instance.
	require.NoError(t, f.templates.Delete(ctx, template.ID))

	instances, err = f.crops.ListInstances(ctx, crop.ID)
	require.NoError(t, err)
	assert.Len(t, instances, 1)
}

func TestCrop_Attach_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	template := f.sowing(t)
	crop := f.crop(t)

	_, err := f.crops.Attach(ctx, crop.ID, template.ID)
	require.NoError(t, err)

	_, err = f.crops.Attach(ctx, crop.ID, template.ID)
	require.ErrorIs(t, err, services.ErrDuplicateOperation)
	assert.True(t, services.IsConflictError(err))

	instances, err := f.crops.ListInstances(ctx, crop.ID)
	require.NoError(t, err)
	assert.Len(t, instances, 1)
}

func TestCrop_Attach_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	template := f.sowing(t)
	crop := f.crop(t)

	_, err := f.crops.Attach(ctx, "missing", template.ID)
	require.ErrorIs(t, err, services.ErrCropNotFound)

	_, err = f.crops.Attach(ctx, crop.ID, "missing")
	require.ErrorIs(t, err, services.ErrTemplateNotFound)
}

func TestCrop_SetFieldValue(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	template := f.sowing(t)
	crop := f.crop(t)

	_, err := f.crops.Attach(ctx, crop.ID, template.ID)
	require.NoError(t, err)

	depthID := template.Fields[2].ID
	require.NoError(t, f.crops.SetFieldValue(ctx, crop.ID, template.ID, depthID, "4.5"))

	instances, err := f.crops.ListInstances(ctx, crop.ID)
	require.NoError(t, err)

	for _, entry := range instances[0].Fields {
		if entry.FieldID == depthID {
			assert.Equal(t, "4.5", entry.Value)
		} else {
			assert.Empty(t, entry.Value)
		}
	}

	// Values are stored as entered.
	require.NoError(t, f.crops.SetFieldValue(ctx, crop.ID, template.ID, depthID, "about 4"))

	// Unknown field is silently ignored.
	require.NoError(t, f.crops.SetFieldValue(ctx, crop.ID, template.ID, "missing", "1"))

	err = f.crops.SetFieldValue(ctx, crop.ID, "not-attached", depthID, "1")
	require.ErrorIs(t, err, services.ErrOperationNotFound)

	assert.Contains(t, f.publisher.types(), events.FieldValueSetEvent)
}

func TestCrop_SetFieldValue_ConcurrentWritersKeepEveryValue(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	crop := f.crop(t)

	template, err := f.templates.Create(ctx, "Survey", "")
	require.NoError(t, err)

	ids := make([]string, 0, 20)

	for range 20 {
		field, err := f.templates.AddField(ctx, template.ID, services.FieldInput{Name: "Point", Role: models.RoleExecution})
		require.NoError(t, err)

		ids = append(ids, field.ID)
	}

	_, err = f.crops.Attach(ctx, crop.ID, template.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.NoError(t, f.crops.SetFieldValue(ctx, crop.ID, template.ID, id, id))
		}()
	}

	wg.Wait()

	instances, err := f.crops.ListInstances(ctx, crop.ID)
	require.NoError(t, err)

	for _, entry := range instances[0].Fields {
		assert.Equal(t, entry.FieldID, entry.Value)
	}
}

func TestCrop_Detach(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	template := f.sowing(t)
	crop := f.crop(t)

	_, err := f.crops.Attach(ctx, crop.ID, template.ID)
	require.NoError(t, err)

	require.NoError(t, f.crops.Detach(ctx, crop.ID, template.ID))
	require.NoError(t, f.crops.Detach(ctx, crop.ID, template.ID), "detaching twice is a no-op")

	instances, err := f.crops.ListInstances(ctx, crop.ID)
	require.NoError(t, err)
	assert.Empty(t, instances)

	require.ErrorIs(t, f.crops.Detach(ctx, "missing", template.ID), services.ErrCropNotFound)
}

func TestCrop_AvailableTemplates(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	sowing := f.sowing(t)
	crop := f.crop(t)

	spraying, err := f.templates.Create(ctx, "Spraying", "")
	require.NoError(t, err)

	available, err := f.crops.AvailableTemplates(ctx, crop.ID)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	_, err = f.crops.Attach(ctx, crop.ID, sowing.ID)
	require.NoError(t, err)

	available, err = f.crops.AvailableTemplates(ctx, crop.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, spraying.ID, available[0].ID)
}

func TestCrop_FillFromReading(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	template := f.sowing(t)
	crop := f.crop(t)

	_, err := f.crops.Attach(ctx, crop.ID, template.ID)
	require.NoError(t, err)

	// A value already entered by hand is kept.
	require.NoError(t, f.crops.SetFieldValue(ctx, crop.ID, template.ID, template.Fields[1].ID, "70"))

	instance, err := f.crops.FillFromReading(ctx, crop.ID, template.ID, "field1")
	require.NoError(t, err)

	temp, _ := instance.Entry(template.Fields[0].ID)
	moisture, _ := instance.Entry(template.Fields[1].ID)
	depth, _ := instance.Entry(template.Fields[2].ID)

	assert.Equal(t, "12", temp.Value)
	assert.Equal(t, "70", moisture.Value)
	assert.Empty(t, depth.Value, "manual fields are not filled")

	_, err = f.crops.FillFromReading(ctx, crop.ID, template.ID, "field9")
	assert.True(t, services.IsNotFound(err))
}

func TestCrop_CheckStartConditions(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	template := f.sowing(t)
	crop := f.crop(t)
	tempID := template.Fields[0].ID

	_, err := f.crops.Attach(ctx, crop.ID, template.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		value  string
		ready  bool
		status models.Status
	}{
		{name: "empty bounded condition", value: "", ready: false},
		{name: "inside the band", value: "13", ready: true, status: models.StatusOptimal},
		{name: "inside the range", value: "8,5", ready: true, status: models.StatusAcceptable},
		{name: "too cold", value: "5", ready: false, status: models.StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, f.crops.SetFieldValue(ctx, crop.ID, template.ID, tempID, tt.value))

			readiness, err := f.crops.CheckStartConditions(ctx, crop.ID, template.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.ready, readiness.Ready)
			require.Len(t, readiness.Conditions, 2)

			temp := readiness.Conditions[0]
			assert.Equal(t, tt.status, temp.Status)
			assert.Equal(t, tt.value != "", temp.Evaluated)

			moisture := readiness.Conditions[1]
			assert.False(t, moisture.Evaluated)
			assert.Equal(t, "no bounds", moisture.Reason)
		})
	}

	require.NoError(t, f.crops.SetFieldValue(ctx, crop.ID, template.ID, tempID, "warm"))

	_, err = f.crops.CheckStartConditions(ctx, crop.ID, template.ID)
	assert.True(t, services.IsValidationError(err))
}

func TestCrop_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	crop := f.crop(t)

	updated, err := f.crops.Update(ctx, crop.ID, services.CropPatch{Kind: ptr("corn")})
	require.NoError(t, err)
	assert.Equal(t, "corn", updated.Kind)
	assert.Equal(t, "North wheat", updated.Name)

	require.NoError(t, f.crops.Delete(ctx, crop.ID))

	_, err = f.crops.Get(ctx, crop.ID)
	require.ErrorIs(t, err, services.ErrCropNotFound)
}
