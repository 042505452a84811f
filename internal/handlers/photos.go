package handlers

import (
	"encoding/json"
	"net/http"

	"sprout/internal/repository"
	"sprout/pkg/utils"
)

type createPhotoRequest struct {
	ImageURL  string `json:"imageUrl"`
	IsProfile bool   `json:"isProfile"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ListPhotosHandler returns the merged photo timeline: standalone photos plus
// watering-event images, newest first.
func (h *Handler) ListPhotosHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	items, err := h.repo.ListPhotos(s.ID, r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err, "Plant not found", "Failed to fetch plant photos")
		return
	}

	utils.WriteData(w, http.StatusOK, items)
}

// CreatePhotoHandler attaches an already-uploaded image to a plant.
func (h *Handler) CreatePhotoHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req createPhotoRequest
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}

	if req.ImageURL == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationFailed, "Image URL is required")
		return
	}

	photo, err := h.repo.CreatePhoto(s.ID, r.PathValue("id"), req.ImageURL, req.Width, req.Height, req.IsProfile)
	if err != nil {
		h.writeRepoError(w, err, "Plant not found", "Failed to create plant photo")
		return
	}

	utils.WriteData(w, http.StatusOK, photo)
}

// DeletePhotoHandler removes a photo (or strips a watering image), deletes the
// physical file best-effort, and reassigns the profile image when needed.
func (h *Handler) DeletePhotoHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	kind := repository.PhotoKind(r.URL.Query().Get("type"))
	if kind != repository.KindPhoto && kind != repository.KindWatering {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationFailed, "Photo type must be 'photo' or 'watering'")
		return
	}

	deletion, err := h.repo.DeletePhoto(s.ID, r.PathValue("id"), r.PathValue("photoId"), kind)
	if err != nil {
		h.writeRepoError(w, err, "Photo not found", "Failed to delete photo")
		return
	}

	// The record mutation already succeeded; a failed unlink is logged inside
	// the store and deliberately not surfaced to the client.
	if deletion.RemovedURL != nil {
		_ = h.store.Remove(*deletion.RemovedURL)
	}

	utils.WriteDataMessage(w, http.StatusOK, deletion, "Photo deleted successfully")
}
