package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moodcraft/backend/internal/catalog"
	"github.com/moodcraft/backend/internal/config"
	"github.com/moodcraft/backend/internal/engine"
	"github.com/moodcraft/backend/internal/models"
	"github.com/moodcraft/backend/internal/profile"
	"github.com/moodcraft/backend/internal/recommend"
	"github.com/moodcraft/backend/internal/resolver"
	"github.com/moodcraft/backend/internal/services"
	"github.com/moodcraft/backend/internal/store"
)

// stubProvider returns canned recommendations or a fixed error.
type stubProvider struct {
	err error
}

func (s *stubProvider) Generate(_ context.Context, req models.PlaylistRequest) (*recommend.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	recs := make([]models.AbstractRecommendation, req.Length)
	for i := range recs {
		recs[i] = models.AbstractRecommendation{
			Artist: fmt.Sprintf("Artist %d", i),
			Title:  fmt.Sprintf("Title %d", i),
			Genre:  "Pop",
			Energy: 6,
		}
	}
	return &recommend.Response{
		PlaylistName:    "Stub Mix",
		Recommendations: recs,
		TotalEnergy:     6,
		DominantMood:    "energetic",
	}, nil
}

func (s *stubProvider) Replacement(context.Context, recommend.ReplacementHint) (*models.AbstractRecommendation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AbstractRecommendation{Artist: "Swap Artist", Title: "Swap Title", Genre: "Pop", Energy: 5}, nil
}

// nothingSearcher forces every resolution to the guaranteed pool.
type nothingSearcher struct{}

func (nothingSearcher) Search(context.Context, string, int) ([]catalog.Track, error) {
	return nil, nil
}

func (nothingSearcher) SearchGenre(context.Context, string, int) ([]catalog.Track, error) {
	return nil, nil
}

// echoSearcher resolves every query to a playable exact match.
type echoSearcher struct{}

func (echoSearcher) Search(_ context.Context, query string, _ int) ([]catalog.Track, error) {
	return []catalog.Track{{
		ID:         "cat-" + query,
		Name:       query,
		DurationMS: 195000,
		PreviewURL: "https://cdn/" + query + ".mp3",
		Artists:    []catalog.Artist{{Name: query}},
	}}, nil
}

func (echoSearcher) SearchGenre(context.Context, string, int) ([]catalog.Track, error) {
	return nil, nil
}

func newTestHandler(t *testing.T, p recommend.Provider, s resolver.Searcher) (*PlaylistHandler, *store.Store) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	res := resolver.New(s, catalog.DefaultPool(), resolver.Options{RatePerSec: 1000, MaxInFlight: 2})
	eng := engine.New(p, res, profile.NewBuilder(10), engine.NewMemoryCache(time.Minute), nil, st)
	return NewPlaylistHandler(eng, st), st
}

func TestPlaylistHandler_Generate(t *testing.T) {
	handler, st := newTestHandler(t, &stubProvider{}, nothingSearcher{})

	body, _ := json.Marshal(models.GenerateRequest{
		Profile: models.ProfileSnapshot{
			FavoriteGenres: []string{"Pop"},
			Length:         4,
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/playlists/generate", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp generateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Error("JobID should be set")
	}
	if len(resp.Playlist.Tracks) != 4 {
		t.Errorf("got %d tracks, want 4", len(resp.Playlist.Tracks))
	}
	for i, tr := range resp.Playlist.Tracks {
		if tr.MediaURL == "" {
			t.Errorf("track %d has empty media URL", i)
		}
	}

	// The playlist is persisted for history.
	if _, err := st.GetPlaylist(context.Background(), resp.Playlist.ID); err != nil {
		t.Errorf("playlist not persisted: %v", err)
	}
}

func TestPlaylistHandler_GenerateInvalidJSON(t *testing.T) {
	handler, _ := newTestHandler(t, &stubProvider{}, nothingSearcher{})

	req := httptest.NewRequest(http.MethodPost, "/api/playlists/generate", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestPlaylistHandler_GenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"auth", recommend.ErrAuth, http.StatusBadGateway},
		{"rate limited", recommend.ErrRateLimited, http.StatusTooManyRequests},
		{"malformed", recommend.ErrMalformed, http.StatusBadGateway},
		{"network", recommend.ErrNetwork, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, &stubProvider{err: tt.err}, nothingSearcher{})

			body, _ := json.Marshal(models.GenerateRequest{
				Profile: models.ProfileSnapshot{Length: 3},
			})
			req := httptest.NewRequest(http.MethodPost, "/api/playlists/generate", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Generate(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message should be set")
			}
		})
	}
}

func TestPlaylistHandler_RegenerateValidatesLength(t *testing.T) {
	handler, _ := newTestHandler(t, &stubProvider{}, nothingSearcher{})

	body, _ := json.Marshal(models.RegenerateRequest{
		Request: models.PlaylistRequest{Genres: []string{"Pop"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/playlists/regenerate", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Regenerate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func replaceRequest(t *testing.T, handler *PlaylistHandler, playlistID string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/playlists/"+playlistID+"/replace", bytes.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", playlistID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.Replace(rec, req)
	return rec
}

func storedPlaylist(t *testing.T, st *store.Store, n int) models.GeneratedPlaylist {
	t.Helper()
	tracks := make([]models.ResolvedTrack, n)
	for i := range tracks {
		tracks[i] = models.ResolvedTrack{
			ID:          fmt.Sprintf("orig-%d", i),
			Title:       fmt.Sprintf("Track %d", i),
			Artist:      fmt.Sprintf("Artist %d", i),
			DurationSec: 120,
			MediaURL:    "https://cdn/x.mp3",
		}
	}
	p := models.GeneratedPlaylist{
		ID:           "pl-1",
		Name:         "Stored",
		Tracks:       tracks,
		DurationSec:  n * 120,
		DominantMood: "chill",
		CreatedAt:    time.Now().UTC(),
		Source:       models.SourceAI,
	}
	if err := st.SavePlaylist(context.Background(), p); err != nil {
		t.Fatalf("failed to seed playlist: %v", err)
	}
	return p
}

func TestPlaylistHandler_Replace(t *testing.T) {
	handler, st := newTestHandler(t, &stubProvider{}, echoSearcher{})
	storedPlaylist(t, st, 5)

	body, _ := json.Marshal(models.ReplaceTrackRequest{
		Request: models.PlaylistRequest{Genres: []string{"Pop"}, Length: 5, Mood: models.MoodChill},
		Index:   2,
	})
	rec := replaceRequest(t, handler, "pl-1", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var updated models.GeneratedPlaylist
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if updated.Tracks[2].ID == "orig-2" {
		t.Error("index 2 was not replaced")
	}
	if updated.Tracks[0].ID != "orig-0" || updated.Tracks[4].ID != "orig-4" {
		t.Error("other tracks should be untouched")
	}

	// The replacement is persisted.
	persisted, err := st.GetPlaylist(context.Background(), "pl-1")
	if err != nil {
		t.Fatalf("GetPlaylist failed: %v", err)
	}
	if persisted.Tracks[2].ID == "orig-2" {
		t.Error("replacement not persisted")
	}
}

func TestPlaylistHandler_ReplaceNotFound(t *testing.T) {
	handler, _ := newTestHandler(t, &stubProvider{}, echoSearcher{})

	body, _ := json.Marshal(models.ReplaceTrackRequest{Index: 0})
	rec := replaceRequest(t, handler, "ghost", body)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", rec.Code)
	}
}

func TestPlaylistHandler_ReplaceIndexOutOfRange(t *testing.T) {
	handler, st := newTestHandler(t, &stubProvider{}, echoSearcher{})
	storedPlaylist(t, st, 3)

	body, _ := json.Marshal(models.ReplaceTrackRequest{Index: 7})
	rec := replaceRequest(t, handler, "pl-1", body)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestAuthHandler_Token(t *testing.T) {
	authService := services.NewAuthService("test-secret", time.Hour)
	handler := NewAuthHandler(authService)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"listenerId":"listener-1"}`, http.StatusOK},
		{"missing listener", `{}`, http.StatusBadRequest},
		{"invalid json", `nope`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/token", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()

			handler.Token(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				var resp models.TokenResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if _, err := authService.ValidateToken(resp.Token); err != nil {
					t.Errorf("issued token does not validate: %v", err)
				}
			}
		})
	}
}

func TestConfigHandler_PublicConfig(t *testing.T) {
	handler := NewConfigHandler(&config.Config{DefaultLength: 12})

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()

	handler.PublicConfig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var resp publicConfig
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.DefaultLength != 12 {
		t.Errorf("DefaultLength = %d, want 12", resp.DefaultLength)
	}
	if len(resp.Moods) == 0 {
		t.Error("Moods should be listed")
	}
}
