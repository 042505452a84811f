package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sprout/internal/database"
	"sprout/pkg/utils"
)

type waterRequest struct {
	Notes    *string `json:"notes"`
	ImageURL *string `json:"imageUrl"`
}

type wateringResult struct {
	Watering *database.WateringHistory `json:"watering"`
	Plant    *database.Plant           `json:"plant"`
}

// WaterPlantHandler records a watering event. The body is either JSON with an
// optional note and an already-uploaded image URL, or multipart/form-data with
// an inline photo. History insert and plant update commit together.
func (h *Handler) WaterPlantHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	plantID := r.PathValue("id")

	var notes, imageURL *string

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		maxUpload := utils.SizeToBytes(h.cfg.Upload.MaxSize, 10<<20)
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload+(1<<20))
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestBodyTooLarge, "File exceeds size limit.")
			return
		}

		if v := r.FormValue("notes"); v != "" {
			notes = &v
		}

		if _, fh, err := r.FormFile("photo"); err == nil {
			// Ownership check before the file hits disk.
			if _, err := h.repo.GetPlant(s.ID, plantID); err != nil {
				h.writeRepoError(w, err, "Plant not found", "Failed to water plant")
				return
			}

			saved, err := h.store.SaveUpload(fh, "watering", plantID)
			if err != nil {
				h.writeRepoError(w, err, "", "Failed to upload image")
				return
			}
			imageURL = &saved.URL
		}
	} else {
		// JSON body; absent or malformed bodies water without note or photo.
		var req waterRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err == nil {
			notes = req.Notes
			imageURL = req.ImageURL
		}
	}

	record, plant, err := h.repo.WaterPlant(s.ID, plantID, notes, imageURL, time.Now())
	if err != nil {
		h.writeRepoError(w, err, "Plant not found", "Failed to water plant")
		return
	}

	utils.WriteDataMessage(w, http.StatusOK, wateringResult{Watering: record, Plant: plant}, "Plant watered successfully")
}
