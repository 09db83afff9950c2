package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/appealdesk/appealdesk/internal/api/handlers"
	"github.com/appealdesk/appealdesk/internal/api/middleware"
	"github.com/appealdesk/appealdesk/internal/config"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/pkg/metrics"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Appeal *handlers.AppealHandler
	Letter *handlers.LetterHandler
	Admin  *handlers.AdminHandler
}

// New builds the HTTP handler tree
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware)

	// Public routes
	r.Group(func(r chi.Router) {
		// Swagger documentation
		r.Get("/swagger/*", httpSwagger.WrapHandler)

		// Health checks and metrics
		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
		r.Handle("/metrics", metrics.Handler())

		// Auth endpoints (v1)
		r.Post("/api/v1/auth/register", h.Auth.Register)
		r.Post("/api/v1/auth/login", h.Auth.Login)
		r.Post("/api/v1/auth/refresh", h.Auth.RefreshToken)
		r.Post("/api/v1/auth/logout", h.Auth.Logout)

		// Auth endpoints (aliases for frontend compatibility)
		r.Post("/api/auth/register", h.Auth.Register)
		r.Post("/api/auth/login", h.Auth.Login)
		r.Post("/api/auth/refresh", h.Auth.RefreshToken)
		r.Post("/api/auth/logout", h.Auth.Logout)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth.JWTSecret))

		// Auth
		r.Get("/api/v1/auth/me", h.Auth.Me)
		r.Get("/api/auth/me", h.Auth.Me)

		// Appeals
		r.Route("/api/v1/appeals", func(r chi.Router) {
			r.Get("/", h.Appeal.List)
			r.Post("/", h.Appeal.Create)
			r.Get("/{id}", h.Appeal.Get)
			r.Post("/{id}/letter", h.Appeal.GenerateLetter)
		})

		// Quota status
		r.Get("/api/v1/quota", h.Appeal.Quota)

		// Letter generation (flat shape for frontend compatibility)
		r.Post("/api/generate-letter", h.Letter.GenerateLetter)

		// Admin panel
		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/profiles", h.Admin.ListProfiles)
			r.Patch("/profiles/{id}", h.Admin.UpdateProfile)
		})
	})

	return r
}
