package handlers

import "net/http"

// Routes builds the API route table. Middleware wrapping (rate limit, CORS,
// request logging) happens around the returned mux in main.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.RegisterHandler)
	mux.HandleFunc("POST /api/auth/login", LoginRateLimitMiddleware(h.LoginHandler))
	mux.HandleFunc("POST /api/auth/logout", h.LogoutHandler)
	mux.HandleFunc("GET /api/auth/me", h.MeHandler)
	mux.HandleFunc("DELETE /api/auth/account", h.DeleteAccountHandler)

	// Plants
	mux.HandleFunc("GET /api/plants", h.ListPlantsHandler)
	mux.HandleFunc("POST /api/plants", h.CreatePlantHandler)
	mux.HandleFunc("GET /api/plants/{id}", h.GetPlantHandler)
	mux.HandleFunc("PUT /api/plants/{id}", h.UpdatePlantHandler)
	mux.HandleFunc("DELETE /api/plants/{id}", h.DeletePlantHandler)

	// Watering
	mux.HandleFunc("POST /api/plants/{id}/water", h.WaterPlantHandler)
	mux.HandleFunc("GET /api/plants/{id}/watering-history", h.WateringHistoryHandler)

	// Photos
	mux.HandleFunc("GET /api/plants/{id}/photos", h.ListPhotosHandler)
	mux.HandleFunc("POST /api/plants/{id}/photos", h.CreatePhotoHandler)
	mux.HandleFunc("DELETE /api/plants/{id}/photos/{photoId}", h.DeletePhotoHandler)

	// Uploads
	mux.HandleFunc("POST /api/upload", h.UploadHandler)
	mux.Handle("GET /uploads/", http.FileServer(http.Dir(h.cfg.Upload.PublicDir)))

	// Health
	mux.HandleFunc("GET /api/health", h.HealthHandler)

	return mux
}
