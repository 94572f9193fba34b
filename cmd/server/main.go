package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/moodcraft/backend/internal/config"
	"github.com/moodcraft/backend/internal/logging"
	"github.com/moodcraft/backend/internal/router"
	"github.com/moodcraft/backend/internal/store"
)

func main() {
	// Initialize structured logging (reads LOGGING_LEVEL env var)
	logging.Initialize()

	// Load configuration
	cfg := config.Load()

	// Open the playlist store and apply migrations
	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open playlist store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	// Create router
	r := router.New(cfg, st)

	// Start server
	addr := ":" + cfg.Port
	slog.Info("starting server", slog.String("addr", addr))

	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
