package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/trader-link/internal/config"
	"github.com/ignite/trader-link/internal/service/linking"
)

// Server represents the API server
type Server struct {
	config   config.ServerConfig
	handlers *Handlers
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, svc *linking.Service) *Server {
	handlers := NewHandlers(svc)
	router := SetupRoutes(handlers, cfg.APIToken)

	return &Server{
		config:   cfg,
		handlers: handlers,
		router:   router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
		// Batch provisioning with batch_size=0 can touch every eligible
		// listing in one request, so the write timeout is generous.
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.router
}
