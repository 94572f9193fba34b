// Package router wires configuration, services, and handlers into the
// HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/moodcraft/backend/internal/broker"
	"github.com/moodcraft/backend/internal/catalog"
	"github.com/moodcraft/backend/internal/config"
	"github.com/moodcraft/backend/internal/engine"
	"github.com/moodcraft/backend/internal/handlers"
	"github.com/moodcraft/backend/internal/middleware"
	"github.com/moodcraft/backend/internal/profile"
	"github.com/moodcraft/backend/internal/recommend"
	"github.com/moodcraft/backend/internal/resolver"
	"github.com/moodcraft/backend/internal/services"
	"github.com/moodcraft/backend/internal/store"
)

func New(cfg *config.Config, st *store.Store) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewRealIPMiddleware(cfg.TrustedProxies).Handler)
	r.Use(middleware.RequestContextMiddleware)
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// Services
	authService := services.NewAuthService(cfg.JWTSecret, cfg.TokenDuration)

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTokenURL,
		cfg.CatalogClientID, cfg.CatalogClientSecret, cfg.CatalogTimeout)
	search := resolver.NewBreakerSearcher(catalogClient)
	res := resolver.New(search, catalog.DefaultPool(), resolver.Options{
		RatePerSec:  cfg.ResolveRatePerSec,
		MaxInFlight: cfg.ResolveMaxInFlight,
	})

	provider := recommend.NewChatClient(cfg.RecommendBaseURL, cfg.RecommendAPIKey,
		cfg.PrimaryModel, cfg.FallbackModel, cfg.RecommendTimeout)

	progressBroker := broker.New()
	eng := engine.New(provider, res,
		profile.NewBuilder(cfg.DefaultLength),
		engine.NewMemoryCache(cfg.CacheTTL),
		progressBroker, st)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	configHandler := handlers.NewConfigHandler(cfg)
	playlistHandler := handlers.NewPlaylistHandler(eng, st)
	progressHandler := handlers.NewProgressHandler(progressBroker)

	// Rate limiter for the generation endpoints
	generateRateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Public configuration
		r.Get("/config", configHandler.PublicConfig)

		// Token issuance (no auth)
		r.Post("/token", authHandler.Token)

		// Playlist pipeline (auth required)
		r.Route("/playlists", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))
			r.Use(middleware.UpdateRequestContextMiddleware)

			r.Get("/", playlistHandler.List)
			r.Get("/{id}", playlistHandler.Get)
			r.Post("/{id}/replace", playlistHandler.Replace)

			// Generation fans out into model and catalog calls; rate limited.
			r.With(generateRateLimiter.Middleware).Post("/generate", playlistHandler.Generate)
			r.With(generateRateLimiter.Middleware).Post("/regenerate", playlistHandler.Regenerate)
		})

		// Progress streaming (auth required)
		r.Route("/jobs", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))
			r.Get("/{jobId}/progress", progressHandler.Stream)
		})
	})

	return r
}
