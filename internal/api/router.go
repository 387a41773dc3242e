package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DreadX3/copy-snap-magic-words/internal/database"
	"github.com/DreadX3/copy-snap-magic-words/internal/events"
	mw "github.com/DreadX3/copy-snap-magic-words/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// Profile handlers
	Me              http.HandlerFunc
	CompleteProfile http.HandlerFunc

	// Usage / generation handlers
	UsageStatus http.HandlerFunc
	Generate    http.HandlerFunc

	// History handlers
	History        http.HandlerFunc
	Favorites      http.HandlerFunc
	ToggleFavorite http.HandlerFunc

	// Billing handlers
	CheckSubscription http.HandlerFunc
	Checkout          http.HandlerFunc
	BillingPortal     http.HandlerFunc
	StripeWebhook     http.HandlerFunc

	// Admin handlers
	ListAdmins    http.HandlerFunc
	AddAdmin      http.HandlerFunc
	RemoveAdmin   http.HandlerFunc
	ListAuditLogs http.HandlerFunc
	ResetUsers    http.HandlerFunc

	// Middleware
	AuthMiddleware       func(http.Handler) http.Handler
	AdminMiddleware      func(http.Handler) http.Handler
	SuperAdminMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, eventsClient *events.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe, always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe, checks DB and the event stream
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if eventsClient != nil && !eventsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if eventsClient == nil {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public), optionally rate-limited
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Signed provider callbacks, authenticated by signature, not JWT
		r.Post("/webhooks/stripe", h.StripeWebhook)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.Me)
				r.Post("/complete", h.CompleteProfile)
			})

			r.Get("/usage", h.UsageStatus)
			r.Post("/generate", h.Generate)

			r.Get("/history", h.History)
			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", h.Favorites)
				r.Post("/toggle", h.ToggleFavorite)
			})

			r.Route("/billing", func(r chi.Router) {
				r.Get("/subscription", h.CheckSubscription)
				r.Post("/checkout", h.Checkout)
				r.Post("/portal", h.BillingPortal)
			})

			// Admin panel
			r.Route("/admin", func(r chi.Router) {
				r.Use(h.AdminMiddleware)

				r.Route("/admins", func(r chi.Router) {
					r.Get("/", h.ListAdmins)
					r.Post("/", h.AddAdmin)
					r.Delete("/{userID}", h.RemoveAdmin)
				})
				r.Get("/audit", h.ListAuditLogs)

				// Destructive, super admins only
				r.Group(func(r chi.Router) {
					r.Use(h.SuperAdminMiddleware)
					r.Post("/reset", h.ResetUsers)
				})
			})
		})
	})

	return r
}
