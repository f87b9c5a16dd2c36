// Package api serves a cart file and its snapshot journal over HTTP.
//
// All routes under /api/v1 require an X-API-Key header. /metrics is left
// open for scraping.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ssargent/sharecart/pkg/cart"
)

const shutdownTimeout = 5 * time.Second

// Server holds the API server state
type Server struct {
	store   CartStore
	journal Journal
	codec   *cart.Codec
	config  ServerConfig
	metrics *Metrics
	logger  *zap.Logger

	writeMu sync.Mutex // held across load, snapshot, save and reload
}

// NewServer creates a new API server
func NewServer(store CartStore, journal Journal, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:   store,
		journal: journal,
		codec:   cart.NewCodec(),
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// Router builds the HTTP handler with all routes configured
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey, s.metrics))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Stateless codec
		r.Post("/decode", s.metrics.InstrumentHandler("POST", "/api/v1/decode", s.handleDecode))
		r.Post("/encode", s.metrics.InstrumentHandler("POST", "/api/v1/encode", s.handleEncode))

		// Cart file
		r.Get("/cart", s.metrics.InstrumentHandler("GET", "/api/v1/cart", s.handleGetCart))
		r.Put("/cart", s.metrics.InstrumentHandler("PUT", "/api/v1/cart", s.handlePutCart))
		r.Patch("/cart", s.metrics.InstrumentHandler("PATCH", "/api/v1/cart", s.handlePatchCart))

		// Snapshot journal
		r.Get("/snapshots", s.metrics.InstrumentHandler("GET", "/api/v1/snapshots", s.handleListSnapshots))
		r.Get("/snapshots/{id}", s.metrics.InstrumentHandler("GET", "/api/v1/snapshots/{id}", s.handleGetSnapshot))
		r.Post("/snapshots/{id}/restore", s.metrics.InstrumentHandler("POST", "/api/v1/snapshots/{id}/restore", s.handleRestoreSnapshot))
	})

	return r
}

// Addr returns the listen address for the configured bind and port
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)
}

// StartServer serves until ctx is cancelled, then shuts down gracefully
func StartServer(ctx context.Context, server *Server) error {
	httpServer := &http.Server{
		Addr:              server.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("starting sharecart API server",
			zap.String("addr", httpServer.Addr),
			zap.String("cart", server.store.Path()),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	server.logger.Info("shutting down sharecart API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
