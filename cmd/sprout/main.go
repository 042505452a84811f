package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"sprout/internal/config"
	"sprout/internal/database"
	"sprout/internal/handlers"
	"sprout/internal/middleware"
	"sprout/internal/repository"
	"sprout/internal/session"
	"sprout/internal/storage"
	"sprout/pkg/logger"
	"sprout/pkg/utils"
)

func main() {
	utils.LoadEnv()

	// Load Config & Env
	config.Load()
	cfg := config.AppConfig

	// Connect DB
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.LogFatal("Failed to open database at %s: %v", cfg.Database.Path, err)
	}

	h := handlers.New(
		repository.New(db),
		session.NewManager(cfg.Session.Secret, cfg.SessionMaxAge()),
		storage.New(cfg.Upload.PublicDir, utils.SizeToBytes(cfg.Upload.MaxSize, 10<<20)),
		cfg,
	)

	mux := h.Routes()

	finalHandler := middleware.RateLimit(cfg.Security.RateLimit)(
		middleware.CORS(cfg.Security.CorsOrigins)(
			middleware.Logger(mux),
		),
	)

	port := cfg.Server.Port

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.LogServerStart(port, cfg.GetBaseUrl())
	log.Fatal(server.ListenAndServe())
}
