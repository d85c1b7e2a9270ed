package completed_trips

import (
	"net/http"

	"github.com/roamly/roamly/internal/rest"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// ListCompletedTrips godoc
// @Summary List completed trips
// @Tags CompletedTrips
// @Produce json
// @Success 200 {array} CompletedTrip
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/completedtrips [get]
func (h *Handler) ListCompletedTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.store.List(r.Context())
	if err != nil {
		rest.WriteStorageError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, trips)
}
