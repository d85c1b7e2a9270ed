package place

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/roamly/roamly/internal/rest"
	log "github.com/sirupsen/logrus"
)

type PlaceDTO struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image"`
	MapUrl      string `json:"mapUrl"`
}

type CategoryDTO struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// ListPlaces godoc
// @Summary List places
// @Description List catalog places, optionally filtered by category
// @Tags Place
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {array} PlaceDTO
// @Router /api/places [get]
func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	log.Debugf("Listing places, category=%q", category)
	rest.WriteJSON(w, http.StatusOK, ToDTOs(h.catalog.ByCategory(category)))
}

// GetPlace godoc
// @Summary Get a place
// @Tags Place
// @Produce json
// @Param placeId path int true "Place ID"
// @Success 200 {object} PlaceDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/places/{placeId} [get]
func (h *Handler) GetPlace(w http.ResponseWriter, r *http.Request) {
	placeId, ok := PlaceIdFromPath(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.Get(placeId)
	if err != nil {
		rest.WriteError(w, http.StatusNotFound, err.Error(), "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(p))
}

// ListCategories godoc
// @Summary List place categories with their place counts
// @Tags Place
// @Produce json
// @Success 200 {array} CategoryDTO
// @Router /api/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.Categories()
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, CategoryDTO{Name: c.Name, Count: c.Count})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// PlaceIdFromPath parses the {placeId} route variable, answering 400 when it is not a number.
func PlaceIdFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	placeId, err := strconv.Atoi(mux.Vars(r)["placeId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid place id", err.Error())
		return 0, false
	}
	return placeId, true
}

func ToDTO(p Place) PlaceDTO {
	return PlaceDTO{
		Id:          p.Id,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		MapUrl:      p.MapUrl,
	}
}

func ToDTOs(places []Place) []PlaceDTO {
	dtos := make([]PlaceDTO, 0, len(places))
	for _, p := range places {
		dtos = append(dtos, ToDTO(p))
	}
	return dtos
}
