package trip

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/roamly/roamly/pkg/place"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, fixture) {
	t.Helper()
	catalog, err := place.NewCatalog([]place.Place{bali, ubud, kyoto})
	require.NoError(t, err)
	f := setup(t)
	handler := NewHandler(f.store, catalog)

	r := mux.NewRouter()
	r.HandleFunc("/api/trip", handler.GetCurrentTrip).Methods("GET")
	r.HandleFunc("/api/trip", handler.ClearTrip).Methods("DELETE")
	r.HandleFunc("/api/trip/name", handler.RenameTrip).Methods("PUT")
	r.HandleFunc("/api/trip/save", handler.SaveTrip).Methods("POST")
	r.HandleFunc("/api/trip/places", handler.AddPlace).Methods("POST")
	r.HandleFunc("/api/trip/places/{placeId}", handler.GetPlaceStatus).Methods("GET")
	r.HandleFunc("/api/trip/places/{placeId}", handler.RemovePlace).Methods("DELETE")
	return r, f
}

func decodeTrip(t *testing.T, w *httptest.ResponseRecorder) TripDTO {
	t.Helper()
	var dto TripDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	return dto
}

func TestHandler_AddPlace(t *testing.T) {
	t.Run("adds a catalog place", func(t *testing.T) {
		r, f := setupHandlerTest(t)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/trip/places", strings.NewReader(`{"placeId":2}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		dto := decodeTrip(t, w)
		assert.Equal(t, 1, dto.PlaceCount)
		assert.Equal(t, "Ubud Monkey Forest", dto.Places[0].Name)
		assert.True(t, f.store.IsInCurrentTrip(2))
	})

	t.Run("unknown place is not found", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/trip/places", strings.NewReader(`{"placeId":99}`)))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/trip/places", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unavailable storage answers 503", func(t *testing.T) {
		r, f := setupHandlerTest(t)
		f.storage.SetUnavailable(true)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/trip/places", strings.NewReader(`{"placeId":1}`)))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandler_PlaceStatusAndRemoval(t *testing.T) {
	r, f := setupHandlerTest(t)
	_, err := f.store.AddPlace(ctx, kyoto)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trip/places/3", nil))
	var status PlaceStatusDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.Equal(t, PlaceStatusDTO{PlaceId: 3, InTrip: true}, status)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/trip/places/3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decodeTrip(t, w).PlaceCount)
}

func TestHandler_RenameSaveAndClear(t *testing.T) {
	r, f := setupHandlerTest(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/trip/name", strings.NewReader(`{"name":"Bali Trip"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bali Trip", decodeTrip(t, w).Name)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/trip/save", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	var saveRequested SaveRequestedDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&saveRequested))
	assert.True(t, saveRequested.FormRequired)
	assert.Equal(t, "Bali Trip", saveRequested.Trip.Name)

	oldId := f.store.Current().Id
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/trip", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	cleared := decodeTrip(t, w)
	assert.Equal(t, DefaultName, cleared.Name)
	assert.NotEqual(t, oldId, cleared.Id)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trip", nil))
	assert.Equal(t, cleared, decodeTrip(t, w))
}
