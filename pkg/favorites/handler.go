package favorites

import (
	"net/http"

	"github.com/roamly/roamly/internal/rest"
	"github.com/roamly/roamly/pkg/place"
	log "github.com/sirupsen/logrus"
)

type FavoritesDTO struct {
	Count  int              `json:"count"`
	Places []place.PlaceDTO `json:"places"`
}

type FavoriteStatusDTO struct {
	PlaceId  int  `json:"placeId"`
	Favorite bool `json:"favorite"`
	Count    int  `json:"count"`
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

// ListFavorites godoc
// @Summary List favorite places
// @Tags Favorites
// @Produce json
// @Success 200 {object} FavoritesDTO
// @Router /api/favorites [get]
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	places := h.store.List()
	rest.WriteJSON(w, http.StatusOK, FavoritesDTO{Count: len(places), Places: place.ToDTOs(places)})
}

// GetFavorite godoc
// @Summary Check whether a place is a favorite
// @Tags Favorites
// @Produce json
// @Param placeId path int true "Place ID"
// @Success 200 {object} FavoriteStatusDTO
// @Router /api/favorites/{placeId} [get]
func (h *Handler) GetFavorite(w http.ResponseWriter, r *http.Request) {
	placeId, ok := place.PlaceIdFromPath(w, r)
	if !ok {
		return
	}
	rest.WriteJSON(w, http.StatusOK, FavoriteStatusDTO{
		PlaceId:  placeId,
		Favorite: h.store.IsFavorite(placeId),
		Count:    h.store.Count(),
	})
}

// ToggleFavorite godoc
// @Summary Toggle the favorite flag of a place
// @Tags Favorites
// @Produce json
// @Param placeId path int true "Place ID"
// @Success 200 {object} FavoriteStatusDTO
// @Failure 404 {object} rest.ErrorResponse
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/favorites/{placeId}/toggle [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	placeId, ok := place.PlaceIdFromPath(w, r)
	if !ok {
		return
	}
	log.Debugf("Toggling favorite %d", placeId)

	p, err := h.places.Get(placeId)
	if err != nil {
		// a favorite that left the catalog can still be removed
		stored, isFavorite := h.store.Get(placeId)
		if !isFavorite {
			rest.WriteError(w, http.StatusNotFound, err.Error(), "")
			return
		}
		p = stored
	}

	favorite, err := h.store.Toggle(r.Context(), p)
	if err != nil {
		rest.WriteStorageError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, FavoriteStatusDTO{PlaceId: placeId, Favorite: favorite, Count: h.store.Count()})
}
