package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"motorvault-api/internal/auth"
	"motorvault-api/internal/transport/http/handler"
	"motorvault-api/internal/transport/http/middleware"
)

// NewRouter creates and configures the HTTP router. The visitor surface
// (catalog reads, streams) is open; mutations sit behind the session
// middleware.
func NewRouter(
	h *handler.Handler,
	carsHandler *handler.CarsHandler,
	authHandler *handler.AuthHandler,
	streamHandler *handler.StreamHandler,
	provider auth.Provider,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints (no auth required)
		r.Get("/health", h.Health)
		r.Get("/ready", h.Ready)

		// Auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		// Public visitor surface
		r.Get("/cars", carsHandler.List)
		r.Get("/cars/stream", streamHandler.Catalog)
		r.Get("/cars/{id}", carsHandler.Detail)

		// Operator mutations
		r.Group(func(r chi.Router) {
			r.Use(middleware.Protect(provider))
			r.Post("/cars", carsHandler.Create)
			r.Put("/cars/{id}", carsHandler.Update)
			r.Delete("/cars/{id}", carsHandler.Delete)
		})

		// Operator console stream (guards its own token)
		r.Get("/admin/stream", streamHandler.Console)
	})

	return r
}
