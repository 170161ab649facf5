// Package server provides the HTTP server and routing for the simulation
// engine. Handlers are a thin serialization shell: they only call the
// engine's load / run / calibrate operations and persist summaries.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Port     int
	DevMode  bool
	Handlers *Handlers
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	if cfg.DevMode {
		s.router.Use(middleware.Logger)
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	h := cfg.Handlers
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/model/parameters", h.HandleGetParameters)
		r.Post("/model/load", h.HandleLoadModel)
		r.Post("/run/deterministic", h.HandleRunDeterministic)
		r.Post("/run/monte-carlo", h.HandleRunMonteCarlo)
		r.Post("/calibrate", h.HandleCalibrate)
		r.Get("/runs", h.HandleListRuns)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Monte Carlo runs can be long
	}

	return s
}

// Router returns the chi router (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
