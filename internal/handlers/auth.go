package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/moodcraft/backend/internal/models"
	"github.com/moodcraft/backend/internal/services"
)

// AuthHandler issues API tokens for listeners.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates an AuthHandler backed by the given auth service.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token issues a bearer token for the given listener ID.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ListenerID == "" {
		writeError(w, http.StatusBadRequest, "listenerId is required")
		return
	}

	token, err := h.authService.GenerateToken(req.ListenerID)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to generate token", err)
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}
