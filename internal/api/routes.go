package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/trader-link/internal/pkg/httputil"
)

// SetupRoutes configures all API routes. A non-empty apiToken guards
// everything under /api/v1 with bearer auth; the health check stays open
// for load balancers.
func SetupRoutes(h *Handlers, apiToken string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://portal.example.com", "http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		if apiToken != "" {
			r.Use(bearerAuth(apiToken))
		}

		// Read path
		r.Get("/accounts/{accountID}/listings", h.ListOwnedListings)
		r.Get("/listings/{listingID}/access", h.CheckAccess)

		// Write path
		r.Post("/connections", h.Connect)
		r.Delete("/connections/{listingID}", h.Disconnect)

		// Batch operations
		r.Post("/autolink/run", h.RunAutoLink)
		r.Post("/provision/batch", h.RunProvisionBatch)
		r.Post("/listings/{listingID}/account", h.CreateAccountForListing)

		// Operator diagnostics
		r.Get("/errors", h.RecentErrors)
	})

	return r
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			got := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
			if got != token {
				httputil.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
