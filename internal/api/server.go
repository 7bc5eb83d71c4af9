// Package api provides the HTTP API server and handlers for the NutriTrack application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nutritrackapp/nutritrack-server/internal/openfoodfacts"
	"github.com/nutritrackapp/nutritrack-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store            store.Store
	services         *Services
	off              *openfoodfacts.Client
	router           *chi.Mux
	api              huma.API
	logger           *slog.Logger
	proxyRateLimiter *RateLimiter
	authRateLimiter  *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, off *openfoodfacts.Client, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))

	// The proxy routes exist so browser clients can reach Open Food Facts
	// without CORS trouble, so the API itself stays permissive.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("NutriTrack API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:            st,
		services:         services,
		off:              off,
		router:           router,
		api:              humaAPI,
		logger:           logger,
		proxyRateLimiter: NewRateLimiter(60, time.Minute, 20),
		authRateLimiter:  NewRateLimiter(20, time.Minute, 10),
	}

	s.registerHealthRoutes()
	s.registerProxyRoutes()
	s.registerAuthRoutes()
	s.registerFoodRoutes()
	s.registerLogRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
