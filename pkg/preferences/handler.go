package preferences

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roamly/roamly/internal/rest"
)

type ThemeDTO struct {
	Theme string `json:"theme"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetTheme godoc
// @Summary Get the display theme
// @Tags Preferences
// @Produce json
// @Success 200 {object} ThemeDTO
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/preferences/theme [get]
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.service.Theme(r.Context())
	if err != nil {
		rest.WriteStorageError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ThemeDTO{Theme: string(theme)})
}

// SetTheme godoc
// @Summary Set the display theme
// @Tags Preferences
// @Accept json
// @Produce json
// @Param theme body ThemeDTO true "light or dark"
// @Success 200 {object} ThemeDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/preferences/theme [put]
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var dto ThemeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if err := h.service.SetTheme(r.Context(), Theme(dto.Theme)); err != nil {
		if errors.Is(err, ErrInvalidTheme) {
			rest.WriteError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		rest.WriteStorageError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}
