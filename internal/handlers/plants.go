package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"sprout/internal/database"
	"sprout/internal/repository"
	"sprout/internal/status"
	"sprout/pkg/utils"
)

// plantDetail is a plant row plus its computed status, as returned by the
// detail endpoint.
type plantDetail struct {
	*database.Plant
	Status status.PlantStatus `json:"status"`
}

// ListPlantsHandler returns the caller's plants with computed status, newest first.
func (h *Handler) ListPlantsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	plants, err := h.repo.ListPlants(s.ID)
	if err != nil {
		h.writeRepoError(w, err, "", "Failed to fetch plants")
		return
	}

	now := time.Now()
	statuses := make([]status.PlantStatus, 0, len(plants))
	for i := range plants {
		statuses = append(statuses, status.Calculate(&plants[i], now))
	}

	utils.WriteData(w, http.StatusOK, statuses)
}

// CreatePlantHandler registers a new plant for the caller.
func (h *Handler) CreatePlantHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var in repository.CreatePlantInput
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}

	plant, err := h.repo.CreatePlant(s.ID, in)
	if err != nil {
		h.writeRepoError(w, err, "", "Failed to create plant")
		return
	}

	utils.WriteData(w, http.StatusOK, plant)
}

// GetPlantHandler returns one plant, its last 20 watering events, and status.
func (h *Handler) GetPlantHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	plant, err := h.repo.GetPlant(s.ID, r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err, "Plant not found", "Failed to fetch plant")
		return
	}

	utils.WriteData(w, http.StatusOK, plantDetail{
		Plant:  plant,
		Status: status.Calculate(plant, time.Now()),
	})
}

// UpdatePlantHandler applies a partial update; absent fields stay untouched.
func (h *Handler) UpdatePlantHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var in repository.UpdatePlantInput
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}

	plant, err := h.repo.UpdatePlant(s.ID, r.PathValue("id"), in)
	if err != nil {
		h.writeRepoError(w, err, "Plant not found", "Failed to update plant")
		return
	}

	utils.WriteDataMessage(w, http.StatusOK, plant, "Plant updated successfully")
}

// DeletePlantHandler removes a plant with its watering history and photos.
//
// TODO: uploaded image files for the plant stay on disk here; only individual
// photo deletion removes files. Needs a sweep of uploads/plants/<id>/.
func (h *Handler) DeletePlantHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeletePlantCascade(s.ID, r.PathValue("id")); err != nil {
		h.writeRepoError(w, err, "Plant not found", "Failed to delete plant")
		return
	}

	utils.WriteMessage(w, http.StatusOK, "Plant deleted successfully")
}

// WateringHistoryHandler lists all watering events, most recent first.
func (h *Handler) WateringHistoryHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	history, err := h.repo.ListWateringHistory(s.ID, r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err, "Plant not found", "Failed to fetch watering history")
		return
	}

	utils.WriteData(w, http.StatusOK, history)
}
