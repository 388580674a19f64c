package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func sowingTemplate() *OperationTemplate {
	return &OperationTemplate{
		ID:          "sowing",
		Name:        "Sowing",
		Description: "Sowing of agricultural crops",
		Fields: []FieldDefinition{
			{ID: "1", Name: "Soil temperature", Unit: "°C", SensorID: ptr("temp_soil"), Role: RoleStartCondition, MinValue: ptr(8.0), MaxValue: ptr(25.0)},
			{ID: "2", Name: "Row spacing", Unit: "cm", Role: RoleExecution},
		},
	}
}

func TestSnapshot_CopiesFieldsWithEmptyValues(t *testing.T) {
	template := sowingTemplate()

	instance := Snapshot(template)

	assert.Equal(t, "sowing", instance.TemplateID)
	assert.Equal(t, "Sowing", instance.TemplateName)
	require.Len(t, instance.Fields, 2)

	first := instance.Fields[0]
	assert.Equal(t, "1", first.FieldID)
	assert.Equal(t, "Soil temperature", first.FieldName)
	assert.Equal(t, RoleStartCondition, first.Role)
	require.NotNil(t, first.SensorID)
	assert.Equal(t, "temp_soil", *first.SensorID)
	assert.Empty(t, first.Value)
	assert.Nil(t, instance.Fields[1].SensorID)
}

func TestSnapshot_IndependentOfTemplate(t *testing.T) {
	template := sowingTemplate()
	crop := &Crop{ID: "wheat", Name: "Winter Wheat"}

	_, err := crop.Attach(template)
	require.NoError(t, err)

	before := crop.Clone().Operations[0]

	*template.Fields[0].SensorID = "temp_air"
	*template.Fields[0].MinValue = 0
	template.Fields[0].Name = "Renamed"
	template.Name = "Renamed template"
	template.RemoveField("2")
	template.Fields = append(template.Fields, FieldDefinition{ID: "3", Name: "Depth", Role: RoleExecution})

	assert.Equal(t, before, crop.Operations[0])
	assert.Equal(t, "temp_soil", *crop.Operations[0].Fields[0].SensorID)
	assert.InDelta(t, 8.0, *crop.Operations[0].Fields[0].MinValue, 0)
	assert.Len(t, crop.Operations[0].Fields, 2)
}

func TestCrop_Attach_Duplicate(t *testing.T) {
	template := sowingTemplate()
	crop := &Crop{ID: "wheat", Name: "Winter Wheat"}

	_, err := crop.Attach(template)
	require.NoError(t, err)

	_, err = crop.Attach(template)
	require.ErrorIs(t, err, ErrDuplicateOperation)
	assert.Len(t, crop.Operations, 1)
}

func TestOperationInstance_SetFieldValue(t *testing.T) {
	instance := Snapshot(sowingTemplate())

	assert.True(t, instance.SetFieldValue("1", "12"))

	entry, ok := instance.Entry("1")
	require.True(t, ok)
	assert.Equal(t, "12", entry.Value)

	other, ok := instance.Entry("2")
	require.True(t, ok)
	assert.Empty(t, other.Value)
}

func TestOperationInstance_SetFieldValue_UnknownField(t *testing.T) {
	instance := Snapshot(sowingTemplate())
	before := instance.Clone()

	assert.False(t, instance.SetFieldValue("missing", "12"))
	assert.Equal(t, before, instance)
}

func TestCrop_Detach(t *testing.T) {
	crop := &Crop{ID: "wheat"}
	_, err := crop.Attach(sowingTemplate())
	require.NoError(t, err)

	assert.False(t, crop.Detach("unknown"))
	assert.Len(t, crop.Operations, 1)

	assert.True(t, crop.Detach("sowing"))
	assert.Empty(t, crop.Operations)
}

func TestCrop_Clone_IsDeep(t *testing.T) {
	crop := &Crop{ID: "wheat"}
	_, err := crop.Attach(sowingTemplate())
	require.NoError(t, err)

	clone := crop.Clone()
	clone.Operations[0].SetFieldValue("1", "20")
	*clone.Operations[0].Fields[0].SensorID = "changed"

	assert.Empty(t, crop.Operations[0].Fields[0].Value)
	assert.Equal(t, "temp_soil", *crop.Operations[0].Fields[0].SensorID)
}

func TestOperationInstance_EntriesByRole(t *testing.T) {
	instance := Snapshot(sowingTemplate())

	start := instance.EntriesByRole(RoleStartCondition)
	execution := instance.EntriesByRole(RoleExecution)

	require.Len(t, start, 1)
	require.Len(t, execution, 1)
	assert.Equal(t, "1", start[0].FieldID)
	assert.Equal(t, "2", execution[0].FieldID)
}
