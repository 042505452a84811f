// Package handlers wires the HTTP surface: request decoding, session checks,
// repository calls, and the JSON envelope every endpoint answers with.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"sprout/internal/config"
	"sprout/internal/repository"
	"sprout/internal/session"
	"sprout/internal/storage"
	"sprout/pkg/logger"
	"sprout/pkg/utils"
)

// Handler carries the injected application state. No package-level mutable
// state: one instance per server, one per test.
type Handler struct {
	repo     repository.Repository
	sessions *session.Manager
	store    *storage.Store
	cfg      *config.Config

	startedAt time.Time
}

func New(repo repository.Repository, sessions *session.Manager, store *storage.Store, cfg *config.Config) *Handler {
	return &Handler{
		repo:      repo,
		sessions:  sessions,
		store:     store,
		cfg:       cfg,
		startedAt: time.Now(),
	}
}

// requireSession authenticates the caller or answers 401 itself.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Require(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.ErrAuthRequired, "Unauthorized - Please log in")
		return nil, false
	}
	return s, true
}

// writeRepoError maps domain-known failures to their status codes; everything
// else falls through to a logged 500.
func (h *Handler) writeRepoError(w http.ResponseWriter, err error, notFoundMsg, fallback string) {
	switch {
	case repository.IsValidation(err):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationFailed, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, notFoundMsg)
	case errors.Is(err, repository.ErrEmailTaken):
		utils.WriteError(w, http.StatusConflict, utils.ErrResourceConflict, "Email already exists")
	case errors.Is(err, repository.ErrInvalidCredentials):
		utils.WriteError(w, http.StatusUnauthorized, utils.ErrAuthInvalid, "Invalid email or password")
	case errors.Is(err, storage.ErrUnsupportedMedia), errors.Is(err, storage.ErrFileTooLarge):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestUnSupportedMedia,
			"Invalid image file. Only JPEG, PNG, and WebP files under 10MB are allowed.")
	case errors.Is(err, storage.ErrIO):
		logger.LogError("Upload storage failure: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrStorageIO, "Failed to store uploaded file")
	default:
		logger.LogError("%s: %v", fallback, err)
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, fallback)
	}
}

// HealthHandler reports liveness plus build identity.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"name":    h.cfg.App.Name,
		"version": h.cfg.App.Version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}
