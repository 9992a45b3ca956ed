// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the WebAC authorization server.
//
// The server initializes components in sequence:
//
//  1. Configuration: load settings from defaults, an optional config file,
//     and environment variables (Koanf v2).
//  2. Logging: configure the global zerolog logger.
//  3. Resource store: an in-memory LDP store backing the evaluator.
//  4. Evaluator: the ancestor-walk authorization core.
//  5. Cache: a single-flight, size/TTL-bounded decision cache (or a no-op
//     decider when caching is disabled), supervised alongside a periodic
//     expired-entry sweep.
//  6. Authenticators: Basic and JWT, chained through a MultiAuthenticator.
//  7. Access Enforcement Filter: the HTTP middleware enforcing decisions.
//  8. HTTP server: the LDP surface behind the filter.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/trellisldp/webac/internal/auth"
	"github.com/trellisldp/webac/internal/config"
	"github.com/trellisldp/webac/internal/httpapi"
	"github.com/trellisldp/webac/internal/ldp"
	"github.com/trellisldp/webac/internal/logging"
	"github.com/trellisldp/webac/internal/webac"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
		return
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logging.Info().Msg("starting webac server")

	store := ldp.NewStore()

	root := webac.IRI(cfg.Data.Root)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := webac.Bootstrap(ctx, store, root); err != nil {
		logging.Fatal().Err(err).Msg("failed to bootstrap root container")
		return
	}

	evaluator := webac.NewEvaluator(store, webac.EvaluatorConfig{
		Root:                   root,
		MembershipCheckEnabled: cfg.WebAC.MembershipCheckEnabled,
	})

	supervisor := suture.NewSimple("webac")

	var decider webac.Decider
	if cfg.WebAC.CacheSize > 0 {
		authCache := webac.NewAuthorizationCache(evaluator, cfg.WebAC.CacheSize,
			time.Duration(cfg.WebAC.CacheExpireSeconds)*time.Second)
		decider = authCache
		supervisor.Add(&cacheSweeper{cache: authCache, interval: 30 * time.Second})
	} else {
		decider = webac.NewNoopAuthorizationCache(evaluator)
	}

	authenticators := buildAuthenticators(cfg)

	auditLogger := webac.NewAuditLogger(webac.DefaultAuditLoggerConfig())
	defer auditLogger.Close()

	filterCfg := webac.DefaultFilterConfig()
	filterCfg.DataPrefix = cfg.Data.Prefix
	filterCfg.ReadableMethods = cfg.WebAC.ReadableMethods
	filterCfg.WritableMethods = cfg.WebAC.WritableMethods
	filterCfg.AppendableMethods = cfg.WebAC.AppendableMethods
	filterCfg.Challenges = cfg.Auth.Challenges
	filterCfg.Realm = cfg.Auth.Realm
	filterCfg.Scope = cfg.Auth.Scope

	filter := webac.NewFilter(decider, filterCfg, auditLogger)

	router := httpapi.NewRouter(httpapi.Config{
		Store:              store,
		Filter:             filter,
		RateLimitRequests:  cfg.Server.RateLimitPerMin,
		RateLimitWindow:    time.Minute,
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
	})

	handler := authenticationMiddleware(authenticators)(router)

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	supervisorDone := make(chan error, 1)
	go func() { supervisorDone <- supervisor.Serve(ctx) }()

	serverErrors := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.ListenAddr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			logging.Error().Err(err).Msg("server error")
		}
	case <-sig:
		logging.Info().Msg("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}

	cancel()
	<-supervisorDone

	logging.Info().Msg("webac server stopped")
}

// cacheSweeper is a suture.Service that periodically evicts expired cache
// entries and republishes the cache-size gauge, keeping AuthorizationCache
// bounded and its metrics current between reads.
type cacheSweeper struct {
	cache    *webac.AuthorizationCache
	interval time.Duration
}

func (s *cacheSweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.cache.CleanupExpired(); n > 0 {
				logging.Debug().Int("evicted", n).Msg("swept expired cache entries")
			}
			webac.UpdateCacheSize(s.cache.Len())
		}
	}
}

// buildAuthenticators wires the Basic and JWT authenticators configured by
// cfg into a single priority-ordered chain.
func buildAuthenticators(cfg *config.Config) *auth.MultiAuthenticator {
	multi := auth.NewMultiAuthenticator()

	if cfg.Auth.JWTSecret != "" {
		jwtManager, err := auth.NewJWTManager(cfg.Auth.JWTSecret, 24*time.Hour)
		if err != nil {
			logging.Warn().Err(err).Msg("jwt authenticator disabled")
		} else {
			multi.AddAuthenticator(auth.NewJWTAuthenticator(jwtManager))
		}
	}

	if adminID := os.Getenv("WEBAC_ADMIN_AGENT"); adminID != "" {
		if password := os.Getenv("WEBAC_ADMIN_PASSWORD"); password != "" {
			basicManager, err := auth.NewBasicAuthManager(adminID, password, cfg.Auth.Realm)
			if err != nil {
				logging.Warn().Err(err).Msg("basic authenticator disabled")
			} else {
				multi.AddAuthenticator(auth.NewBasicAuthenticator(basicManager))
			}
		}
	}

	return multi
}

// authenticationMiddleware resolves a webac.Session from the request via
// the authenticator chain and attaches it to the request context, the
// well-known handoff point the Access Enforcement Filter reads from
// (§6.1). Authentication failures fall through as the anonymous session;
// the filter, not this middleware, decides whether anonymous access is
// sufficient.
func authenticationMiddleware(authenticators *auth.MultiAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := authenticators.Authenticate(r.Context(), r)
			var session webac.Session
			if err != nil {
				session = (*auth.AuthSubject)(nil).ToSession()
			} else {
				session = subject.ToSession()
			}
			next.ServeHTTP(w, r.WithContext(webac.WithSession(r.Context(), session)))
		})
	}
}
