package completed_trips

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roamly/roamly/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestStore_List(t *testing.T) {
	t.Run("seeds and persists defaults on first use", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()

		trips, err := NewStore(storage).List(ctx)

		require.NoError(t, err)
		assert.Equal(t, Defaults, trips)
		_, found, err := storage.GetItem(ctx, StorageKey)
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("returns stored records", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		stored := []CompletedTrip{{Destination: "Lisbon", Date: "2023-05-01"}}
		require.NoError(t, kvstore.SetJSON(ctx, storage, StorageKey, stored))

		trips, err := NewStore(storage).List(ctx)

		require.NoError(t, err)
		assert.Equal(t, stored, trips)
	})

	t.Run("replaces invalid records with defaults", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		require.NoError(t, storage.SetItem(ctx, StorageKey, `[{"destination":"","date":"yesterday"}]`))

		trips, err := NewStore(storage).List(ctx)

		require.NoError(t, err)
		assert.Equal(t, Defaults, trips)
	})

	t.Run("storage failure", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		storage.SetUnavailable(true)

		_, err := NewStore(storage).List(ctx)

		assert.ErrorIs(t, err, kvstore.ErrUnavailable)
	})
}

func TestHandler_ListCompletedTrips(t *testing.T) {
	handler := NewHandler(NewStore(kvstore.NewMemoryStorage()))

	w := httptest.NewRecorder()
	handler.ListCompletedTrips(w, httptest.NewRequest(http.MethodGet, "/api/completedtrips", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kyoto, Japan")
}
