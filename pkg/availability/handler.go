package availability

import (
	"net/http"
	"time"

	"github.com/roamly/roamly/internal/rest"
	log "github.com/sirupsen/logrus"
)

type StatusDTO struct {
	Available bool   `json:"available"`
	Retryable bool   `json:"retryable"`
	Reason    string `json:"reason,omitempty"`
	CheckedAt string `json:"checkedAt"`
}

type Handler struct {
	guard *Guard
}

func NewHandler(guard *Guard) *Handler {
	return &Handler{guard: guard}
}

// GetStatus godoc
// @Summary Storage availability
// @Tags Storage
// @Produce json
// @Success 200 {object} StatusDTO
// @Router /api/storage/status [get]
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, statusToDTO(h.guard.Status()))
}

// Retry godoc
// @Summary Re-check storage availability
// @Tags Storage
// @Produce json
// @Success 200 {object} StatusDTO
// @Failure 503 {object} StatusDTO
// @Router /api/storage/retry [post]
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	log.Debug("Retrying storage probe")
	status := h.guard.Probe(r.Context())
	code := http.StatusOK
	if !status.Available {
		code = http.StatusServiceUnavailable
	}
	rest.WriteJSON(w, code, statusToDTO(status))
}

// Middleware rejects requests while the storage is unavailable.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := h.guard.Status()
		if !status.Available {
			log.Debugf("rejecting %s %s, storage unavailable", r.Method, r.URL.Path)
			rest.WriteUnavailable(w, status.Reason)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func statusToDTO(status Status) StatusDTO {
	return StatusDTO{
		Available: status.Available,
		Retryable: !status.Available,
		Reason:    status.Reason,
		CheckedAt: status.CheckedAt.Format(time.RFC3339),
	}
}
