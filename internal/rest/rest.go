package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roamly/roamly/internal/kvstore"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// WriteJSON encodes body as the JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func WriteError(w http.ResponseWriter, status int, message string, details string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// WriteUnavailable answers with the retryable storage-unavailable error.
func WriteUnavailable(w http.ResponseWriter, details string) {
	WriteJSON(w, http.StatusServiceUnavailable, ErrorResponse{
		Error:     "storage unavailable",
		Details:   details,
		Retryable: true,
	})
}

// WriteStorageError maps a store failure to a response: unavailable storage is
// retryable, anything else is an internal error.
func WriteStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, kvstore.ErrUnavailable) {
		WriteUnavailable(w, err.Error())
		return
	}
	log.Errorf("storage request failed: %v", err)
	WriteError(w, http.StatusInternalServerError, err.Error(), "")
}
