package tasktypes

import (
	"testing"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore(testutil.TaskTypes())
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "sowing", list[0].ID)
	assert.True(t, store.Contains("harvesting"))
	assert.False(t, store.Contains("plowing"))

	duplicate := append(testutil.TaskTypes(), testutil.TaskTypes()[0])
	_, err = NewStore(duplicate)
	require.ErrorIs(t, err, models.ErrValidationFailed)

	broken := testutil.TaskTypes()
	broken[1].Params[0].Range.Optimal = 40
	_, err = NewStore(broken)
	require.ErrorIs(t, err, models.ErrValidationFailed)
}

func TestStore_ReturnsCopies(t *testing.T) {
	store, err := NewStore(testutil.TaskTypes())
	require.NoError(t, err)

	taskType, err := store.Get("harvesting")
	require.NoError(t, err)
	taskType.Params[0].Range.Max = 99

	param, err := store.Param("harvesting", "moisture")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, param.Range.Max, 0)

	_, err = store.Get("plowing")
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = store.Param("harvesting", "yield")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_SetParams(t *testing.T) {
	store, err := NewStore(testutil.TaskTypes())
	require.NoError(t, err)

	params := []models.TaskParameter{
		{Key: "moisture", Label: "Grain moisture", Unit: "%", Range: models.Range{Min: 13, Max: 18, Optimal: 15}},
		{Key: "yield", Label: "Yield", Unit: "c/ha", Range: models.Range{Min: 30, Max: 80, Optimal: 60}},
	}

	updated, err := store.SetParams("harvesting", params)
	require.NoError(t, err)
	require.Len(t, updated.Params, 2)

	params[0].Range.Min = 0
	param, err := store.Param("harvesting", "moisture")
	require.NoError(t, err)
	assert.InDelta(t, 13.0, param.Range.Min, 0)

	tests := []struct {
		name   string
		id     string
		params []models.TaskParameter
		want   error
	}{
		{
			name:   "inverted range",
			id:     "harvesting",
			params: []models.TaskParameter{{Key: "moisture", Label: "Grain moisture", Range: models.Range{Min: 20, Max: 12, Optimal: 15}}},
			want:   models.ErrValidationFailed,
		},
		{
			name:   "missing label",
			id:     "harvesting",
			params: []models.TaskParameter{{Key: "moisture", Range: models.Range{Min: 12, Max: 20, Optimal: 15}}},
			want:   models.ErrValidationFailed,
		},
		{
			name: "unknown type",
			id:   "plowing",
			want: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SetParams(tt.id, tt.params)
			require.ErrorIs(t, err, tt.want)

			current, err := store.Get("harvesting")
			require.NoError(t, err)
			assert.Len(t, current.Params, 2, "a rejected table leaves the current one")
		})
	}
}
