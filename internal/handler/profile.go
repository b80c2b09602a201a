package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/msomdec/prof/internal/domain"
	"github.com/msomdec/prof/internal/service"
)

// ProfileHandler exposes the profile store over HTTP.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// HandleCreate creates a profile from a multipart form.
// POST /user/{uuid}/profile
func (h *ProfileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")

	data, ok := profileData(w, r)
	if !ok {
		return
	}
	imageBytes, imageName, ok := imageUpload(w, r)
	if !ok {
		return
	}

	p, err := h.profiles.Create(r.Context(), uuid, data, imageBytes, imageName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profileResponse{Success: true, Profile: p})
}

// HandleUpdate merges a multipart form into an existing profile.
// PUT /user/{uuid}/profile
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")

	data, ok := profileData(w, r)
	if !ok {
		return
	}
	imageBytes, imageName, ok := imageUpload(w, r)
	if !ok {
		return
	}

	p, err := h.profiles.Update(r.Context(), uuid, data, imageBytes, imageName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Success: true, Profile: p})
}

// HandleGet returns a profile.
// GET /user/{uuid}/profile
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), r.PathValue("uuid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Success: true, Profile: p})
}

// HandleDelete deletes a profile, its image, and its tag-index entries.
// DELETE /user/{uuid}/profile
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), r.PathValue("uuid")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleGetImage serves the profile's image bytes.
// GET /user/{uuid}/profile/image
func (h *ProfileHandler) HandleGetImage(w http.ResponseWriter, r *http.Request) {
	data, _, err := h.profiles.GetImage(r.Context(), r.PathValue("uuid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	// Normalization re-encodes every image as JPEG.
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// HandleList returns profiles, optionally filtered by a comma-separated tag
// list.
// GET /profiles?tags=a,b
func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var tags []string
	for _, tag := range strings.Split(r.URL.Query().Get("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	profiles, err := h.profiles.List(r.Context(), tags)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Profiles: profiles})
}

// profileData decodes the profileData form field. Reports a 400 and returns
// ok=false when the field is missing or malformed.
func profileData(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	raw := r.FormValue("profileData")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Profile data is required")
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile data")
		return nil, false
	}
	return data, true
}

// imageUpload reads the optional image part. Reports a 500 and returns
// ok=false only when reading an attached file fails.
func imageUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", true
		}
		writeError(w, http.StatusBadRequest, "Invalid image upload")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read image upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return nil, "", false
	}
	return data, header.Filename, true
}
