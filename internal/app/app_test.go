package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/roamly/roamly/internal/config"
	"github.com/roamly/roamly/internal/event_bus"
	"github.com/roamly/roamly/internal/kvstore"
	"github.com/roamly/roamly/internal/utils"
	"github.com/roamly/roamly/pkg/place"
	"github.com/roamly/roamly/pkg/trip"
	"github.com/roamly/roamly/pkg/trip_plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T, storage kvstore.Storage) (*httptest.Server, *Dependencies) {
	t.Helper()
	catalog, err := place.LoadCatalog("")
	require.NoError(t, err)
	clock := utils.NewMockClock(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))
	deps := BuildDependencies(context.Background(), storage, catalog, clock, event_bus.NewEventBus())

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, deps
}

func call(t *testing.T, server *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestApplication_PlanATrip(t *testing.T) {
	// given
	storage := kvstore.NewMemoryStorage()
	server, _ := setupServer(t, storage)

	// when
	assert.Equal(t, http.StatusOK, call(t, server, "POST", "/api/trip/places", `{"placeId":1}`).StatusCode)
	assert.Equal(t, http.StatusOK, call(t, server, "POST", "/api/trip/places", `{"placeId":2}`).StatusCode)
	assert.Equal(t, http.StatusOK, call(t, server, "PUT", "/api/trip/name", `{"name":"Bali Trip"}`).StatusCode)
	assert.Equal(t, http.StatusAccepted, call(t, server, "POST", "/api/trip/save", "").StatusCode)
	resp := call(t, server, "POST", "/api/tripplans", `{"name":"Bali Trip"}`)

	// then
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	keys, err := storage.Keys(context.Background())
	require.NoError(t, err)
	var planKeys []string
	for _, key := range keys {
		if strings.HasPrefix(key, trip_plan.KeyPrefix) {
			planKeys = append(planKeys, key)
		}
	}
	require.Len(t, planKeys, 1)

	raw, _, err := storage.GetItem(context.Background(), planKeys[0])
	require.NoError(t, err)
	var plan trip_plan.SavedTripPlan
	require.NoError(t, json.Unmarshal([]byte(raw), &plan))
	assert.Equal(t, "Bali Trip", plan.Name)
	require.Len(t, plan.Places, 2)
	assert.Equal(t, 1, plan.Places[0].Id)
	assert.Equal(t, 2, plan.Places[1].Id)

	var current trip.TripDTO
	require.NoError(t, json.NewDecoder(call(t, server, "GET", "/api/trip", "").Body).Decode(&current))
	assert.Equal(t, trip.DefaultName, current.Name)
	assert.Zero(t, current.PlaceCount)
}

func TestApplication_StorageUnavailable(t *testing.T) {
	// given
	storage := kvstore.NewMemoryStorage()
	server, deps := setupServer(t, storage)
	storage.SetUnavailable(true)

	// when
	resp := call(t, server, "POST", "/api/favorites/1/toggle", "")

	// then
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, deps.Guard.Available())
	assert.Equal(t, http.StatusServiceUnavailable, call(t, server, "GET", "/api/trip", "").StatusCode)
	assert.Equal(t, http.StatusOK, call(t, server, "GET", "/api/places", "").StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, call(t, server, "POST", "/api/storage/retry", "").StatusCode)

	storage.SetUnavailable(false)
	assert.Equal(t, http.StatusOK, call(t, server, "POST", "/api/storage/retry", "").StatusCode)
	assert.Equal(t, http.StatusOK, call(t, server, "POST", "/api/favorites/1/toggle", "").StatusCode)
	assert.True(t, deps.FavoritesStore.IsFavorite(1))
}

func TestApplication_RequestId(t *testing.T) {
	server, _ := setupServer(t, kvstore.NewMemoryStorage())

	resp := call(t, server, "GET", "/api/categories", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIdHeader))
}

func TestWatchStorage_RefreshesSavedPlans(t *testing.T) {
	// given
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	storage := kvstore.NewMemoryStorage()
	_, deps := setupServer(t, storage)
	plans, err := deps.TripPlanService.List(ctx)
	require.NoError(t, err)
	require.Empty(t, plans)
	require.NoError(t, WatchStorage(ctx, storage, deps.EventBus))

	// when
	other := trip_plan.NewRepository(storage.Sibling())
	_, err = other.Store(ctx, trip_plan.SavedTripPlan{Id: 123, Name: "From another window", CreatedAt: time.Now()})
	require.NoError(t, err)

	// then
	plans, err = deps.TripPlanService.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, int64(123), plans[0].Id)
}

func TestOpenStorage(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Storage.Dir = t.TempDir()

		storage, closeStorage, err := OpenStorage(cfg)

		require.NoError(t, err)
		defer closeStorage()
		assert.IsType(t, &kvstore.FileStorage{}, storage)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Storage.Driver = config.SQLiteDriver
		cfg.Storage.SQLitePath = t.TempDir() + "/roamly.db"

		storage, closeStorage, err := OpenStorage(cfg)

		require.NoError(t, err)
		defer closeStorage()
		require.NoError(t, kvstore.Probe(context.Background(), storage))
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Storage.Driver = "floppy"

		_, _, err := OpenStorage(cfg)

		assert.ErrorContains(t, err, "floppy")
	})
}
