package trip

import (
	"encoding/json"
	"net/http"

	"github.com/roamly/roamly/internal/rest"
	"github.com/roamly/roamly/pkg/place"
	log "github.com/sirupsen/logrus"
)

type TripDTO struct {
	Id         int64            `json:"id"`
	Name       string           `json:"name"`
	PlaceCount int              `json:"placeCount"`
	Places     []place.PlaceDTO `json:"places"`
}

type PlaceStatusDTO struct {
	PlaceId int  `json:"placeId"`
	InTrip  bool `json:"inTrip"`
}

type AddPlaceRequest struct {
	PlaceId int `json:"placeId"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

// SaveRequestedDTO tells the client to open the planning form for the returned trip.
type SaveRequestedDTO struct {
	Trip         TripDTO `json:"trip"`
	FormRequired bool    `json:"formRequired"`
}

type PlaceLookup interface {
	Get(id int) (place.Place, error)
}

type Handler struct {
	store  *Store
	places PlaceLookup
}

func NewHandler(store *Store, places PlaceLookup) *Handler {
	return &Handler{store: store, places: places}
}

// GetCurrentTrip godoc
// @Summary Get the current trip
// @Tags Trip
// @Produce json
// @Success 200 {object} TripDTO
// @Router /api/trip [get]
func (h *Handler) GetCurrentTrip(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, tripToDTO(h.store.Current()))
}

// AddPlace godoc
// @Summary Add a place to the current trip
// @Tags Trip
// @Accept json
// @Produce json
// @Param request body AddPlaceRequest true "Place to add"
// @Success 200 {object} TripDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/trip/places [post]
func (h *Handler) AddPlace(w http.ResponseWriter, r *http.Request) {
	var request AddPlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	p, err := h.places.Get(request.PlaceId)
	if err != nil {
		rest.WriteError(w, http.StatusNotFound, err.Error(), "")
		return
	}
	log.Debugf("Adding place %d to the current trip", p.Id)
	if _, err := h.store.AddPlace(r.Context(), p); err != nil {
		rest.WriteStorageError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, tripToDTO(h.store.Current()))
}

// GetPlaceStatus godoc
// @Summary Check whether a place is in the current trip
// @Tags Trip
// @Produce json
// @Param placeId path int true "Place ID"
// @Success 200 {object} PlaceStatusDTO
// @Router /api/trip/places/{placeId} [get]
func (h *Handler) GetPlaceStatus(w http.ResponseWriter, r *http.Request) {
	placeId, ok := place.PlaceIdFromPath(w, r)
	if !ok {
		return
	}
	rest.WriteJSON(w, http.StatusOK, PlaceStatusDTO{PlaceId: placeId, InTrip: h.store.IsInCurrentTrip(placeId)})
}

// RemovePlace godoc
// @Summary Remove a place from the current trip
// @Tags Trip
// @Produce json
// @Param placeId path int true "Place ID"
// @Success 200 {object} TripDTO
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/trip/places/{placeId} [delete]
func (h *Handler) RemovePlace(w http.ResponseWriter, r *http.Request) {
	placeId, ok := place.PlaceIdFromPath(w, r)
	if !ok {
		return
	}
	if _, err := h.store.RemovePlace(r.Context(), placeId); err != nil {
		rest.WriteStorageError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, tripToDTO(h.store.Current()))
}

// RenameTrip godoc
// @Summary Rename the current trip
// @Tags Trip
// @Accept json
// @Produce json
// @Param request body RenameRequest true "New name"
// @Success 200 {object} TripDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/trip/name [put]
func (h *Handler) RenameTrip(w http.ResponseWriter, r *http.Request) {
	var request RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if err := h.store.SetName(r.Context(), request.Name); err != nil {
		rest.WriteStorageError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, tripToDTO(h.store.Current()))
}

// SaveTrip godoc
// @Summary Request saving the current trip
// @Description Signals that the planning form should be shown. No plan is stored until the form is submitted.
// @Tags Trip
// @Produce json
// @Success 202 {object} SaveRequestedDTO
// @Router /api/trip/save [post]
func (h *Handler) SaveTrip(w http.ResponseWriter, r *http.Request) {
	current := h.store.SaveCurrentTrip(r.Context())
	rest.WriteJSON(w, http.StatusAccepted, SaveRequestedDTO{Trip: tripToDTO(current), FormRequired: true})
}

// ClearTrip godoc
// @Summary Discard the current trip and start a new one
// @Tags Trip
// @Produce json
// @Success 200 {object} TripDTO
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/trip [delete]
func (h *Handler) ClearTrip(w http.ResponseWriter, r *http.Request) {
	fresh, err := h.store.Clear(r.Context())
	if err != nil {
		rest.WriteStorageError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, tripToDTO(fresh))
}

func tripToDTO(t CurrentTrip) TripDTO {
	return TripDTO{
		Id:         t.Id,
		Name:       t.Name,
		PlaceCount: len(t.Places),
		Places:     place.ToDTOs(t.Places),
	}
}
