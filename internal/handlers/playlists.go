package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/moodcraft/backend/internal/engine"
	"github.com/moodcraft/backend/internal/models"
	"github.com/moodcraft/backend/internal/recommend"
	"github.com/moodcraft/backend/internal/store"
)

// PlaylistHandler exposes the generation pipeline over HTTP.
type PlaylistHandler struct {
	engine *engine.Engine
	store  *store.Store
}

// NewPlaylistHandler creates a PlaylistHandler.
func NewPlaylistHandler(e *engine.Engine, s *store.Store) *PlaylistHandler {
	return &PlaylistHandler{engine: e, store: s}
}

// generateResponse wraps a playlist with the job ID a client can use to
// follow progress on subsequent calls.
type generateResponse struct {
	JobID    string                    `json:"jobId"`
	Playlist *models.GeneratedPlaylist `json:"playlist"`
}

// Generate builds a playlist from a profile snapshot.
func (h *PlaylistHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	jobID := req.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}

	p, err := h.engine.GenerateFromProfile(r.Context(), req.Profile, jobID)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{JobID: jobID, Playlist: p})
}

// Regenerate re-runs generation for a known request, applying feedback.
func (h *PlaylistHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req models.RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Request.Length < 1 {
		writeError(w, http.StatusBadRequest, "request.length must be at least 1")
		return
	}

	jobID := req.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}

	p, err := h.engine.Regenerate(r.Context(), req.Request, req.Feedback, jobID)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{JobID: jobID, Playlist: p})
}

// Replace swaps a single track in a stored playlist.
func (h *PlaylistHandler) Replace(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")

	var req models.ReplaceTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.store.GetPlaylist(r.Context(), playlistID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "playlist not found")
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load playlist", err)
		return
	}

	if req.Index < 0 || req.Index >= len(p.Tracks) {
		writeError(w, http.StatusBadRequest, "track index out of range")
		return
	}

	updated, err := h.engine.ReplaceTrack(r.Context(), *p, req.Index, req.Request)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	if err := h.store.UpdatePlaylist(r.Context(), *updated); err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to persist replacement", err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// List returns recent playlist summaries, newest first.
func (h *PlaylistHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListPlaylists(r.Context(), 20)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to list playlists", err)
		return
	}
	if list == nil {
		list = []models.PlaylistSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get returns one stored playlist.
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPlaylist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "playlist not found")
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load playlist", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// writePipelineError maps pipeline error kinds onto HTTP statuses with a
// short, human-readable message. Resolution failures never reach here; the
// resolver absorbs them.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrAuth):
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "recommendation backend rejected our credentials", err)
	case errors.Is(err, recommend.ErrRateLimited):
		writeErrorWithCause(r.Context(), w, http.StatusTooManyRequests, "recommendation backend is rate limiting, try again shortly", err)
	case errors.Is(err, recommend.ErrMalformed):
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "recommendation backend returned an unusable reply", err)
	case errors.Is(err, recommend.ErrNetwork):
		writeErrorWithCause(r.Context(), w, http.StatusServiceUnavailable, "recommendation backend is unreachable", err)
	default:
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "playlist generation failed", err)
	}
}
