package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frahmantamala/shared-expenses/internal/auth"
	"github.com/frahmantamala/shared-expenses/internal/debug"
	"github.com/frahmantamala/shared-expenses/internal/expense"
	"github.com/frahmantamala/shared-expenses/internal/telegram"
	"github.com/frahmantamala/shared-expenses/internal/transport/middleware"
	"github.com/frahmantamala/shared-expenses/internal/transport/swagger"
)

// Handlers groups everything the router mounts. A nil Auth leaves the
// expense routes open.
type Handlers struct {
	Expense  *expense.Handler
	Telegram *telegram.Handler
	Debug    *debug.Handler
	Auth     *auth.Handler
	Health   *HealthHandler
	Spec     []byte
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, allowedOrigins []string, logger *slog.Logger) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// Apply global middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", telegram.SecretTokenHeader, middleware.TraceIDHeader},
		ExposedHeaders: []string{middleware.TraceIDHeader},
		MaxAge:         300,
	}))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if h.Spec != nil {
		router.Get(swagger.SpecPath, swagger.SpecHandler(h.Spec))
		router.Handle("/swagger/*", swagger.Handler())
	}
	router.Handle("/metrics", promhttp.Handler())

	if h.Health != nil {
		router.Route("/api/v1", func(r chi.Router) {
			r.Get("/ping", h.Health.Ping)
			r.Get("/health", h.Health.Check)
		})
	}

	if h.Expense != nil {
		router.Group(func(r chi.Router) {
			if h.Auth != nil {
				r.Use(h.Auth.AuthMiddleware)
			}
			r.Get("/api/expenses", h.Expense.GetExpenses)
			r.Post("/api/expenses", h.Expense.CreateExpense)
		})
	}

	if h.Telegram != nil {
		router.Route("/api/telegram", func(r chi.Router) {
			r.Get("/health", h.Telegram.Health)
			r.Post("/webhook", h.Telegram.Webhook)
			r.Get("/diagnose", h.Telegram.Diagnose)
			r.Post("/test-message", h.Telegram.TestMessage)
			r.Get("/updates", h.Telegram.Updates)
		})
	}

	if h.Debug != nil {
		router.Get("/debug/last-expenses", h.Debug.LastExpenses)
	}
}
