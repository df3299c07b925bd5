// Package server wires the HTTP router: middleware stack, route table and
// handlers. The route table is the declarative half of the access policy:
// public routes, the admin-gated registration route and the
// authenticated-only task routes are all declared here.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ebogdum/todoapi/auth"
	"github.com/ebogdum/todoapi/config"
	"github.com/ebogdum/todoapi/core"
	"github.com/ebogdum/todoapi/metrics"
	"github.com/ebogdum/todoapi/server/handlers"
	authMiddleware "github.com/ebogdum/todoapi/server/middleware"
	"github.com/ebogdum/todoapi/store"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	authService *auth.Service,
	codec *auth.TokenCodec,
	users store.UserStore,
	engine *core.Engine,
	cfg *config.AppConfig,
	logger *zap.Logger,
) chi.Router {
	// Initialize metrics
	metrics.RegisterMetrics()

	r := chi.NewRouter()

	// Basic middleware
	r.Use(authMiddleware.V1RequestIDMiddleware())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(authMiddleware.V1SecurityHeaders())

	// Custom logging and metrics middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)

			// Record metrics
			metrics.HTTPRequestsTotal.WithLabelValues(
				r.Method,
				r.URL.Path,
				http.StatusText(ww.Status()),
			).Inc()

			metrics.HTTPRequestDuration.WithLabelValues(
				r.Method,
				r.URL.Path,
			).Observe(duration.Seconds())

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", duration),
				zap.String("user_agent", r.UserAgent()),
				zap.String("remote_addr", r.RemoteAddr))
		})
	})

	// Request gate: resolves a principal for every request carrying a
	// token, or rejects outright. Runs before the route table so rejection
	// short-circuits everything downstream.
	r.Use(authMiddleware.V1AuthMiddleware(codec, users, logger))

	// Health check endpoint (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			logger.Error("Failed to write health check response", zap.Error(err))
		}
	})

	// Metrics endpoint (no auth required)
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Public authentication routes
	loginRateLimiter := rate.NewLimiter(rate.Limit(cfg.Auth.LoginRatePerSecond), cfg.Auth.LoginBurst)
	r.With(authMiddleware.V1RateLimitMiddleware(loginRateLimiter, logger)).
		Post("/auth/login", handlers.V1Login(authService, logger))
	r.Post("/auth/register", handlers.V1Register(authService, logger))

	// Admin-only registration
	r.With(authMiddleware.V1RequireRole(auth.RoleAdmin, logger)).
		Post("/admin/register", handlers.V1RegisterAdmin(authService, logger))

	// Task routes: any authenticated principal; ownership is enforced
	// inside the engine
	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMiddleware.V1RequireAuth(logger))

		r.Post("/", handlers.V1CreateTask(engine, logger))
		r.Get("/", handlers.V1ListTasks(engine, false, logger))
		r.Get("/completed", handlers.V1ListTasks(engine, true, logger))
		r.Patch("/completed/{taskId}", handlers.V1CompleteTask(engine, logger))
		r.Get("/{taskId}", handlers.V1GetTask(engine, logger))
		r.Put("/{taskId}", handlers.V1UpdateTask(engine, logger))
		r.Delete("/{taskId}", handlers.V1DeleteTask(engine, logger))
	})

	logger.Info("HTTP router configured successfully")

	return r
}
