// Package router configures the HTTP routes and middleware for the API.
// It wires together handlers and middleware into a chi router.
package router

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dingwen07/httpmq/internal/audit"
	"github.com/dingwen07/httpmq/internal/broker"
	"github.com/dingwen07/httpmq/internal/config"
	"github.com/dingwen07/httpmq/internal/handlers"
	"github.com/dingwen07/httpmq/internal/middleware"
)

// New creates and configures the HTTP router with all routes and
// middleware. Topic segments are captured with chi's wildcard so a
// topic like "a/b/c" reaches handlers as a single path component (spec
// §6), not three chi path params.
func New(cfg *config.Config, b *broker.Broker, auditLogger *audit.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	if sentry.CurrentHub().Client() != nil {
		sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
		r.Use(sentryHandler.Handle)
	}
	realIPMiddleware := middleware.NewRealIPMiddleware(cfg.TrustedProxies)
	r.Use(realIPMiddleware.Handler)
	r.Use(middleware.RequestContextMiddleware)
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	adminOnly := middleware.AdminOnlyMiddleware(cfg)

	sessionHandler := handlers.NewSessionHandler(b, auditLogger)
	topicHandler := handlers.NewTopicHandler(b, auditLogger)
	messageHandler := handlers.NewMessageHandler(b, auditLogger, cfg)
	adminHandler := handlers.NewAdminHandler(b, auditLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.With(rateLimiter.Middleware).Post("/register", sessionHandler.Register)

		r.With(rateLimiter.Middleware).Post("/publish/*", messageHandler.Publish)

		r.Get("/subscribe", sessionHandler.GetSubscriptions)
		r.Post("/subscribe/*", topicHandler.Subscribe)
		r.Delete("/subscribe/*", topicHandler.Unsubscribe)

		r.Get("/receive", sessionHandler.Receive)

		r.Post("/acknowledge", messageHandler.Acknowledge)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)

			r.Get("/topics", adminHandler.Topics)
			r.Get("/messages/*", adminHandler.Messages)
			r.Get("/sessions", adminHandler.Sessions)
			r.Get("/audit", adminHandler.Audit)
		})
	})

	return r
}
