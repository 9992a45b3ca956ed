// SPDX-License-Identifier: Apache-2.0

package webac

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trellisldp/webac/internal/logging"
)

// sessionContextKey is the well-known request-context key an upstream
// authentication filter writes a Session onto (§6.1). If absent, the filter
// synthesizes an anonymous session.
type sessionContextKey struct{}

// modesContextKey is where the filter places the granted mode set for
// downstream handlers to further restrict behavior on success (§4.6 step 6).
type modesContextKey struct{}

// WithSession attaches session to ctx under the well-known key an upstream
// authenticator is expected to use.
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext retrieves the session an upstream authenticator
// attached to ctx, or the anonymous session if none is present.
func SessionFromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionContextKey{}).(Session); ok {
		return s
	}
	return Session{Agent: AnonymousAgent}
}

// ModesFromContext retrieves the mode set the filter granted for the
// current request, for handlers that need to further restrict behavior.
func ModesFromContext(ctx context.Context) (ModeSet, bool) {
	m, ok := ctx.Value(modesContextKey{}).(ModeSet)
	return m, ok
}

// FilterConfig mirrors §6.3's recognized configuration keys for the Access
// Enforcement Filter.
type FilterConfig struct {
	// DataPrefix is prepended to the request path to form the target IRI
	// (data.prefix, default "trellis:data/").
	DataPrefix string
	// ReadableMethods, WritableMethods, AppendableMethods extend the
	// built-in method classification (webac.readable.methods, etc).
	ReadableMethods   []string
	WritableMethods   []string
	AppendableMethods []string
	// Challenges is the comma-separated list of WWW-Authenticate scheme
	// names emitted on 401 (auth.challenges).
	Challenges []string
	// Realm is embedded in each challenge (auth.realm, default "trellis").
	Realm string
	// Scope is optionally embedded in each challenge (auth.scope).
	Scope string
}

// DefaultFilterConfig returns the spec's documented defaults.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		DataPrefix: "trellis:data/",
		Realm:      "trellis",
	}
}

// Filter is the Access Enforcement Filter (C8): an HTTP middleware that
// classifies each request's required mode, consults a Decider (an
// AuthorizationCache or a NoopAuthorizationCache wrapping the Evaluator),
// and either forwards the request or rejects it per §4.6.
type Filter struct {
	decider Decider
	cfg     FilterConfig
	audit   *AuditLogger
}

// NewFilter builds a Filter over decider using cfg. audit may be nil, in
// which case decisions are not separately audit-logged (only the ambient
// request log captures them).
func NewFilter(decider Decider, cfg FilterConfig, audit *AuditLogger) *Filter {
	if cfg.Realm == "" {
		cfg.Realm = "trellis"
	}
	if cfg.DataPrefix == "" {
		cfg.DataPrefix = "trellis:data/"
	}
	return &Filter{decider: decider, cfg: cfg, audit: audit}
}

// Middleware returns an http middleware enforcing the filter on every
// request, in the teacher's chi-compatible func(http.Handler) http.Handler
// shape.
func (f *Filter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		required, isACL, ok := f.requiredMode(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		session := SessionFromContext(r.Context())
		target := f.targetIRI(r.URL.Path)

		modes, cacheHit, err := f.decider.AccessModes(r.Context(), target, session)
		if err != nil {
			if r.Context().Err() != nil {
				// Client disconnected or request timed out; let the
				// server's own handling take over, nothing to enforce.
				return
			}
			logging.Error().Err(err).Str("target", string(target)).Msg("access decision failed")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		granted := modes.Has(required) || (required == Append && modes.Has(Write))
		duration := time.Since(start)
		RecordDecision(required, granted, duration, cacheHit)
		f.auditDecision(r, target, session, required, modes, granted, duration)

		if !granted {
			if session.IsAnonymous() {
				f.writeChallenge(w)
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), modesContextKey{}, modes)
		rw := &linkDecoratingWriter{ResponseWriter: w, target: target, isACL: isACL}
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// requiredMode classifies the request per §4.6 step 3-4. The bool return
// reports whether this request is subject to enforcement at all — a method
// outside every classification table passes through untouched.
func (f *Filter) requiredMode(r *http.Request) (mode Mode, isACL bool, enforced bool) {
	if r.URL.Query().Get("ext") == "acl" {
		return Control, true, true
	}
	if prefersAudit(r.Header.Get("Prefer")) {
		return Control, false, true
	}

	method := r.Method
	switch {
	case containsMethod(f.cfg.ReadableMethods, method) || method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions:
		return Read, false, true
	case containsMethod(f.cfg.WritableMethods, method) || method == http.MethodPut || method == http.MethodPatch || method == http.MethodDelete:
		return Write, false, true
	case containsMethod(f.cfg.AppendableMethods, method) || method == http.MethodPost:
		return Append, false, true
	default:
		return 0, false, false
	}
}

func containsMethod(methods []string, method string) bool {
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// prefersAudit reports whether the Prefer header names Trellis.PreferAudit,
// which escalates the required mode to Control regardless of method.
func prefersAudit(prefer string) bool {
	return strings.Contains(prefer, "Trellis.PreferAudit")
}

// targetIRI derives the target IRI for path by concatenating the
// configured data prefix (§4.6 step 1). The path's trailing slash, if any,
// is preserved: comparisons against it are handled by Normalize, not here.
func (f *Filter) targetIRI(path string) IRI {
	trimmed := strings.TrimPrefix(path, "/")
	return IRI(f.cfg.DataPrefix + trimmed)
}

// writeChallenge emits one WWW-Authenticate header per configured scheme.
func (f *Filter) writeChallenge(w http.ResponseWriter) {
	for _, scheme := range f.cfg.Challenges {
		challenge := scheme + ` realm="` + f.cfg.Realm + `"`
		if f.cfg.Scope != "" {
			challenge += ` scope="` + f.cfg.Scope + `"`
		}
		w.Header().Add("WWW-Authenticate", challenge)
	}
}

func (f *Filter) auditDecision(r *http.Request, target IRI, session Session, required Mode, granted ModeSet, decision bool, duration time.Duration) {
	if f.audit == nil {
		return
	}
	f.audit.LogDecision(&AuditEvent{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Agent:     session.Agent,
		Delegator: session.DelegatedBy,
		Target:    target,
		Method:    r.Method,
		Required:  required,
		Granted:   granted,
		Decision:  decision,
		Duration:  duration,
	})
}

// linkDecoratingWriter appends the §4.6 "Response decoration" Link header
// to successful, non-ACL responses just before the status line is written.
type linkDecoratingWriter struct {
	http.ResponseWriter
	target      IRI
	isACL       bool
	wroteHeader bool
}

func (w *linkDecoratingWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if !w.isACL && status >= 200 && status < 300 {
			w.Header().Add("Link", "<"+aclLink(w.target)+">; rel=\"acl\"")
		}
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *linkDecoratingWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func aclLink(target IRI) string {
	u := &url.URL{Path: string(target)}
	q := u.Query()
	q.Set("ext", "acl")
	u.RawQuery = q.Encode()
	return u.String()
}
