package trip_plan

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/roamly/roamly/internal/rest"
	"github.com/roamly/roamly/pkg/place"
	log "github.com/sirupsen/logrus"
)

type TripPlanDTO struct {
	Id         int64            `json:"id"`
	Name       string           `json:"name"`
	StartDate  string           `json:"startDate,omitempty"`
	EndDate    string           `json:"endDate,omitempty"`
	PlaceCount int              `json:"placeCount"`
	Places     []place.PlaceDTO `json:"places"`
	Companions []string         `json:"companions"`
	Budget     string           `json:"budget,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  string           `json:"createdAt"`
}

type PlanFormDTO struct {
	Name       string   `json:"name"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Companions []string `json:"companions"`
	Budget     string   `json:"budget"`
	Notes      string   `json:"notes"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListPlans godoc
// @Summary List saved trip plans
// @Description Newest first. Pass refresh=true to re-read them from storage.
// @Tags TripPlan
// @Produce json
// @Param refresh query bool false "Re-read from storage"
// @Success 200 {array} TripPlanDTO
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/tripplans [get]
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	var plans []SavedTripPlan
	var err error
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		plans, err = h.service.Refresh(r.Context())
	} else {
		plans, err = h.service.List(r.Context())
	}
	if err != nil {
		rest.WriteStorageError(w, err)
		return
	}
	dtos := make([]TripPlanDTO, 0, len(plans))
	for _, plan := range plans {
		dtos = append(dtos, planToDTO(plan))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetPlan godoc
// @Summary Get a saved trip plan
// @Tags TripPlan
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {object} TripPlanDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/tripplans/{planId} [get]
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planId, ok := planIdFromPath(w, r)
	if !ok {
		return
	}
	plan, err := h.service.Get(r.Context(), planId)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, planToDTO(plan))
}

// CreatePlan godoc
// @Summary Save the current trip as a trip plan
// @Tags TripPlan
// @Accept json
// @Produce json
// @Param plan body PlanFormDTO true "Planning form"
// @Success 201 {object} TripPlanDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/tripplans [post]
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var form PlanFormDTO
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	log.Debugf("Finalizing trip plan %q", form.Name)
	plan, err := h.service.Finalize(r.Context(), PlanForm{
		Name:       form.Name,
		StartDate:  form.StartDate,
		EndDate:    form.EndDate,
		Companions: form.Companions,
		Budget:     form.Budget,
		Notes:      form.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, planToDTO(plan))
}

// DeletePlan godoc
// @Summary Delete a saved trip plan
// @Tags TripPlan
// @Param planId path int true "Plan ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Failure 503 {object} rest.ErrorResponse
// @Router /api/tripplans/{planId} [delete]
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	planId, ok := planIdFromPath(w, r)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := h.service.Delete(r.Context(), planId, confirmed); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, ErrInvalidForm), errors.Is(err, ErrEmptyTrip), errors.Is(err, ErrDeletionNotConfirmed):
		rest.WriteError(w, http.StatusBadRequest, err.Error(), "")
	default:
		rest.WriteStorageError(w, err)
	}
}

func planIdFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	planId, err := strconv.ParseInt(mux.Vars(r)["planId"], 10, 64)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid plan id", err.Error())
		return 0, false
	}
	return planId, true
}

func planToDTO(plan SavedTripPlan) TripPlanDTO {
	companions := plan.Companions
	if companions == nil {
		companions = []string{}
	}
	return TripPlanDTO{
		Id:         plan.Id,
		Name:       plan.Name,
		StartDate:  plan.StartDate,
		EndDate:    plan.EndDate,
		PlaceCount: len(plan.Places),
		Places:     place.ToDTOs(plan.Places),
		Companions: companions,
		Budget:     plan.Budget,
		Notes:      plan.Notes,
		CreatedAt:  plan.CreatedAt.Format(time.RFC3339),
	}
}
