package handler

import (
	"net/http"

	"github.com/msomdec/prof/internal/auth"
	"github.com/msomdec/prof/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. A nil verifier
// disables signature checks (local development only).
func RegisterRoutes(mux *http.ServeMux, profiles *service.ProfileService, verifier *auth.Verifier) {
	h := NewProfileHandler(profiles)

	mux.Handle("POST /user/{uuid}/profile", RequireOwner(verifier, http.HandlerFunc(h.HandleCreate)))
	mux.Handle("PUT /user/{uuid}/profile", RequireOwner(verifier, http.HandlerFunc(h.HandleUpdate)))
	mux.Handle("DELETE /user/{uuid}/profile", RequireOwner(verifier, http.HandlerFunc(h.HandleDelete)))
	mux.Handle("GET /user/{uuid}/profile", RequireAuth(verifier, http.HandlerFunc(h.HandleGet)))
	mux.Handle("GET /user/{uuid}/profile/image", RequireAuth(verifier, http.HandlerFunc(h.HandleGetImage)))
	mux.Handle("GET /profiles", RequireAuth(verifier, http.HandlerFunc(h.HandleList)))
	mux.HandleFunc("GET /health", HandleHealth)
}
