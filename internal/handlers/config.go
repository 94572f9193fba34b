package handlers

import (
	"net/http"

	"github.com/moodcraft/backend/internal/config"
	"github.com/moodcraft/backend/internal/models"
)

// ConfigHandler exposes non-secret configuration to clients.
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a ConfigHandler.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

type publicConfig struct {
	DefaultLength int           `json:"defaultLength"`
	Moods         []models.Mood `json:"moods"`
}

// PublicConfig returns the settings a client needs to build requests.
func (h *ConfigHandler) PublicConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, publicConfig{
		DefaultLength: h.cfg.DefaultLength,
		Moods: []models.Mood{
			models.MoodEnergetic,
			models.MoodChill,
			models.MoodFocus,
			models.MoodParty,
			models.MoodWorkout,
			models.MoodSleep,
		},
	})
}
