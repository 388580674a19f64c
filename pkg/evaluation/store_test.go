package evaluation

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/tasktypes"
	"github.com/dukex/agroops/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *SessionStore {
	t.Helper()

	return newStoreWith(t, newTaskTypes(t))
}

func newTaskTypes(t *testing.T) *tasktypes.Store {
	t.Helper()

	taskTypes, err := tasktypes.NewStore(testutil.TaskTypes())
	require.NoError(t, err)

	return taskTypes
}

func newStoreWith(t *testing.T, taskTypes *tasktypes.Store) *SessionStore {
	t.Helper()

	return NewSessionStore(newEvaluator(t), taskTypes, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSessionStore_ReachesEvaluated(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	session := store.Create(ctx)
	assert.Equal(t, StateEmpty, session.State)

	_, err := store.SelectType(ctx, session.ID, "sowing")
	require.NoError(t, err)

	_, err = store.SelectCrop(ctx, session.ID, "winter-wheat")
	require.NoError(t, err)

	evaluated, err := store.SelectField(ctx, session.ID, "field1")
	require.NoError(t, err)
	assert.Equal(t, StateEvaluated, evaluated.State)
	require.NotNil(t, evaluated.Diagnostics)
	assert.True(t, evaluated.Diagnostics.Blocking)

	stored, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, evaluated, stored)

	// Re-selecting the type drops the stale diagnostics.
	reset, err := store.SelectType(ctx, session.ID, "harvesting")
	require.NoError(t, err)
	assert.Equal(t, StateTypeSelected, reset.State)
	assert.Nil(t, reset.Diagnostics)
}

func TestSessionStore_RejectsUnknownCatalogValues(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	session := store.Create(ctx)

	_, err := store.SelectType(ctx, session.ID, "plowing")
	require.ErrorIs(t, err, models.ErrValidationFailed)

	_, err = store.SelectType(ctx, session.ID, "sowing")
	require.NoError(t, err)

	_, err = store.SelectCrop(ctx, session.ID, "barley")
	require.ErrorIs(t, err, models.ErrProfileNotFound)

	_, err = store.SelectCrop(ctx, session.ID, "winter-wheat")
	require.NoError(t, err)

	_, err = store.SelectField(ctx, session.ID, "field9")
	require.ErrorIs(t, err, models.ErrNotFound)

	stored, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCropSelected, stored.State)
	assert.Empty(t, stored.FieldID)
}

func TestSessionStore_SelectTypeCarriesParameters(t *testing.T) {
	taskTypes := newTaskTypes(t)
	store := newStoreWith(t, taskTypes)
	ctx := t.Context()
	session := store.Create(ctx)

	sowing, err := store.SelectType(ctx, session.ID, "sowing")
	require.NoError(t, err)
	require.Len(t, sowing.Parameters, 2)
	assert.Equal(t, "seedRate", sowing.Parameters[0].Key)
	assert.Equal(t, models.Range{Min: 100, Max: 300, Optimal: 200}, sowing.Parameters[0].Range)

	harvesting, err := store.SelectType(ctx, session.ID, "harvesting")
	require.NoError(t, err)
	require.Len(t, harvesting.Parameters, 1)
	assert.Equal(t, "moisture", harvesting.Parameters[0].Key)

	_, err = taskTypes.SetParams("harvesting", []models.TaskParameter{
		{Key: "yield", Label: "Yield", Unit: "c/ha", Range: models.Range{Min: 30, Max: 80, Optimal: 60}},
	})
	require.NoError(t, err)

	stored, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "moisture", stored.Parameters[0].Key, "a selected table is kept by the draft")

	stored.Parameters[0].Key = "changed"
	again, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "moisture", again.Parameters[0].Key)

	reselected, err := store.SelectType(ctx, session.ID, "harvesting")
	require.NoError(t, err)
	assert.Equal(t, "yield", reselected.Parameters[0].Key)
}

func TestSessionStore_NilCatalogRejectsTypes(t *testing.T) {
	store := newStoreWith(t, nil)
	ctx := t.Context()
	session := store.Create(ctx)

	_, err := store.SelectType(ctx, session.ID, "sowing")
	require.ErrorIs(t, err, models.ErrValidationFailed)
}

func TestSessionStore_OutOfOrder(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	session := store.Create(ctx)

	_, err := store.SelectCrop(ctx, session.ID, "winter-wheat")
	require.ErrorIs(t, err, models.ErrValidationFailed)

	_, err = store.SelectField(ctx, session.ID, "field1")
	require.ErrorIs(t, err, models.ErrValidationFailed)
}

func TestSessionStore_NotFound(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = store.SelectType(ctx, "missing", "sowing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.ErrorIs(t, store.Delete(ctx, "missing"), ErrSessionNotFound)
}

func TestSessionStore_Prune(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	start := time.Date(2026, time.April, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }
	old := store.Create(ctx)

	store.now = func() time.Time { return start.Add(2 * time.Hour) }
	fresh := store.Create(ctx)

	assert.Equal(t, 1, store.Prune(ctx, start.Add(time.Hour)))
	assert.Equal(t, 1, store.Len())

	_, err := store.Get(ctx, old.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Get(ctx, fresh.ID)
	require.NoError(t, err)
}

func TestSessionStore_PruneDoesNotBlockOtherDrafts(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	busy := store.Create(ctx)
	other := store.Create(ctx)

	// Hold the lock an in-flight evaluation would hold.
	entry, err := store.entry(busy.ID)
	require.NoError(t, err)
	entry.mu.Lock()

	done := make(chan int)

	go func() {
		done <- store.Prune(ctx, time.Now().Add(time.Hour))
	}()

	created := make(chan struct{})

	go func() {
		defer close(created)

		store.Create(ctx)
		_, err := store.Get(ctx, other.ID)
		assert.NoError(t, err)
	}()

	select {
	case <-created:
	case <-time.After(2 * time.Second):
		t.Fatal("drafts blocked while prune waits on a busy draft")
	}

	entry.mu.Unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("prune did not finish")
	}
}

func TestSessionStore_ConcurrentDrafts(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			session := store.Create(ctx)

			_, err := store.SelectType(ctx, session.ID, "sowing")
			assert.NoError(t, err)

			_, err = store.SelectCrop(ctx, session.ID, "winter-wheat")
			assert.NoError(t, err)

			evaluated, err := store.SelectField(ctx, session.ID, "field2")
			if assert.NoError(t, err) {
				assert.Equal(t, StateEvaluated, evaluated.State)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 10, store.Len())
}
