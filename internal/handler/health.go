package handler

import (
	"net/http"
	"time"
)

const serviceVersion = "0.1.0"

// HandleHealth reports service liveness in the shape the prof clients parse.
// GET /health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "prof",
		"version":   serviceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
