// SPDX-License-Identifier: Apache-2.0

// Package auth provides the pluggable authenticators that resolve an
// inbound request's webac.Session. spec.md's Non-goals explicitly place
// "the agent-identity extraction policy" outside the core: the Access
// Enforcement Filter consumes an already-resolved session from the request
// context (webac.SessionFromContext) and never names a particular
// authentication scheme itself. This package is the external collaborator
// that resolves one, generalized from the teacher's multi-scheme
// AuthSubject model down to the two fields a WebAC session needs.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/trellisldp/webac/internal/webac"
)

// AuthMode names the scheme that produced an AuthSubject.
type AuthMode string

const (
	AuthModeBasic AuthMode = "basic"
	AuthModeJWT   AuthMode = "jwt"
)

// String returns the string representation of AuthMode.
func (m AuthMode) String() string { return string(m) }

// Standard authentication errors.
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")
	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
	// ErrAuthenticatorUnavailable indicates an authenticator could not reach
	// a dependency it needs to validate credentials (e.g. a remote key
	// store); MultiAuthenticator treats this the same as ErrNoCredentials.
	ErrAuthenticatorUnavailable = errors.New("authenticator unavailable")
)

// Authenticator extracts and validates credentials from a request,
// producing the AuthSubject a session is built from.
type Authenticator interface {
	// Authenticate extracts and validates credentials from the request.
	Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error)
	// Name returns the authenticator's name for logging.
	Name() string
	// Priority orders authenticators in a MultiAuthenticator chain; lower
	// values are tried first.
	Priority() int
}

// AuthSubject normalizes the result of any authentication scheme into what
// a webac.Session needs: the effective agent's bare identifier, and an
// optional delegator acting on that agent's behalf.
type AuthSubject struct {
	// AgentID is the identifier extracted from credentials (a username, a
	// JWT subject claim). AgentNamespace is prepended to form the IRI the
	// evaluator compares against.
	AgentID string `json:"agent_id"`
	// DelegatedBy, if non-empty, names the principal the agent is acting
	// on behalf of (§4.1's delegation gate).
	DelegatedBy string `json:"delegated_by,omitempty"`
	// AuthMethod records which scheme produced this subject, for logging.
	AuthMethod AuthMode `json:"auth_method"`
}

// AgentNamespace is prepended to a bare AgentID to form the IRI the WebAC
// core compares against. A real deployment resolves agent IRIs from its own
// identity provider; this is a reasonable default for the demo wiring.
const AgentNamespace = "trellis:agent/"

// ToSession converts an AuthSubject into the webac.Session the Access
// Enforcement Filter consults. A nil or empty subject yields the anonymous
// session, matching the filter's own default for an absent session.
func (s *AuthSubject) ToSession() webac.Session {
	if s == nil || s.AgentID == "" {
		return webac.Session{Agent: webac.AnonymousAgent}
	}
	session := webac.Session{Agent: webac.IRI(AgentNamespace + s.AgentID)}
	if s.DelegatedBy != "" {
		session.DelegatedBy = webac.IRI(AgentNamespace + s.DelegatedBy)
		session.HasDelegator = true
	}
	return session
}
