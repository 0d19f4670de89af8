// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves the bookshelf engine over HTTP: shelf management,
// ranked catalog search, and both recommendation paths. Identity comes from
// trusted front-end headers; the engine performs no session or token logic.
package api

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/pdiddy/bookshelf-engine/internal/catalog"
	"github.com/pdiddy/bookshelf-engine/internal/library"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// Server wires the engine stages behind the HTTP API.
type Server struct {
	catalog *catalog.Service
	store   *library.Store
	cfg     types.ServerConfig
	rec     types.RecommendConfig
	log     zerolog.Logger
	version string
}

// NewServer builds a Server over the given catalog service and shelf store.
func NewServer(cat *catalog.Service, store *library.Store, cfg types.EngineConfig, logger zerolog.Logger, version string) *Server {
	return &Server{
		catalog: cat,
		store:   store,
		cfg:     cfg.Server,
		rec:     cfg.Recommend,
		log:     logger,
		version: version,
	}
}

// NewLogger builds the server logger from config: console or JSON output at
// the configured level.
func NewLogger(cfg types.ServerConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if cfg.LogFormat != "json" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// Router assembles the chi router with the full middleware stack and all
// API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-User-ID", "X-User-Email"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RequestsPerMinute > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RequestsPerMinute, time.Minute))
		}
		r.Use(s.identify)

		r.Get("/books/{userID}", s.handleListBooks)
		r.Post("/books", s.handleAddBook)
		r.Put("/books/{id}", s.handleUpdateBook)
		r.Delete("/books/{id}", s.handleDeleteBook)

		r.Get("/search", s.handleSearch)

		r.Get("/recommendations/{userID}", s.handleRecommendations)
		r.Get("/ml-recommendations/{userID}", s.handleMLRecommendations)
		r.Get("/ml-analysis/{userID}", s.handleMLAnalysis)
	})

	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) > 0 {
		return s.cfg.AllowedOrigins
	}
	return []string{"http://localhost:3000"}
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", s.cfg.Addr).Str("version", s.version).Msg("bookshelf API listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
