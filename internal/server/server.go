// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"infowatch/internal/config"
	"infowatch/internal/engine"
	"infowatch/internal/server/handlers"
)

// FlagStore persists user-submitted flags
type FlagStore = handlers.FlagStore

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server exposing the engine's derived views
func NewServer(
	cfg config.ServerConfig,
	eng *engine.Engine,
	flagStore handlers.FlagStore,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	heatmapHandler := handlers.NewHeatmapHandler(eng)
	flagHandler := handlers.NewFlagHandler(eng, flagStore)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Route("/heatmap", func(r chi.Router) {
				r.Get("/", heatmapHandler.GetHeatmap)
				r.Get("/regions", heatmapHandler.GetRegions)
				r.Get("/categories", heatmapHandler.GetCategories)
				r.Get("/arcs", heatmapHandler.GetArcs)
				r.Post("/simulate", heatmapHandler.Simulate)
				r.Post("/flags", flagHandler.SubmitFlag)
			})
		})
	})

	// WebSocket endpoint for live view updates
	router.Get("/ws/heatmap", handlers.HeatmapWebSocketHandler(eng))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
