package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/prof/internal/domain"
)

// profileResponse is the success envelope the prof clients expect.
type profileResponse struct {
	Success bool            `json:"success"`
	Profile *domain.Profile `json:"profile"`
}

type listResponse struct {
	Success  bool             `json:"success"`
	Profiles []domain.Profile `json:"profiles"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error envelope with the given status and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

// writeServiceError maps a profile-store error to its caller-visible
// response. Unexpected faults are logged and reported generically.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Error:   "Validation failed",
			Details: verr.Details,
		})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "Profile already exists")
	case errors.Is(err, domain.ErrImageNotFound):
		writeError(w, http.StatusNotFound, "Image not found")
	case errors.Is(err, domain.ErrImageFileMissing):
		writeError(w, http.StatusNotFound, "Image file not found")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, domain.ErrImageProcessing):
		writeError(w, http.StatusBadRequest, "Failed to process image")
	default:
		slog.Error("profile operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
