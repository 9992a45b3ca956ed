// SPDX-License-Identifier: Apache-2.0

// Package httpapi mounts the Access Enforcement Filter (C8) over a minimal
// LDP resource surface, in the teacher's chi-router style: a global
// middleware stack (request ID, recovery, CORS) followed by route groups,
// here keyed by LDP concern rather than by media-analytics endpoint. Rate
// limiting applies only to the resource route group.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trellisldp/webac/internal/ldp"
	"github.com/trellisldp/webac/internal/logging"
	"github.com/trellisldp/webac/internal/webac"
)

// Config bundles the pieces the router needs beyond the filter itself.
type Config struct {
	Store              *ldp.Store
	Filter             *webac.Filter
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	CORSAllowedOrigins []string
}

// DefaultConfig returns conservative defaults matching the teacher's
// DefaultChiMiddlewareConfig posture: CORS origins empty unless configured,
// a modest request rate limit.
func DefaultConfig() Config {
	return Config{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// NewRouter builds the chi.Router serving the LDP surface behind the
// Access Enforcement Filter.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Prefer"},
		MaxAge:         86400,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", healthLive)
		r.Get("/ready", healthReady(cfg.Store))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		r.Use(cfg.Filter.Middleware)
		r.Handle("/*", resourceHandler(cfg.Store))
	})

	return r
}

// requestIDLogging generates a request ID, attaches it to the context
// alongside a correlation ID, and logs the request's completion at Info —
// the teacher's RequestIDWithLogging pattern, adapted to this repo's
// context-key helpers in internal/logging.
func requestIDLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logging.ContextWithNewRequestID(r.Context())
			ctx = logging.ContextWithNewCorrelationID(ctx)
			w.Header().Set("X-Request-Id", logging.RequestIDFromContext(ctx))

			next.ServeHTTP(w, r.WithContext(ctx))

			logging.Ctx(ctx).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

func healthLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"live"}`))
}

func healthReady(store *ldp.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}
