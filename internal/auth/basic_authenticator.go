// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"net/http"
	"strings"
)

// BasicAuthenticator implements Authenticator for HTTP Basic Authentication,
// wrapping a BasicAuthManager.
type BasicAuthenticator struct {
	manager *BasicAuthManager
}

// NewBasicAuthenticator creates a Basic authenticator.
func NewBasicAuthenticator(manager *BasicAuthManager) *BasicAuthenticator {
	return &BasicAuthenticator{manager: manager}
}

// Authenticate extracts and validates Basic auth credentials from the request.
func (a *BasicAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Basic ") {
		return nil, ErrNoCredentials
	}

	agentID, err := a.manager.ValidateCredentials(authHeader)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return &AuthSubject{
		AgentID:    agentID,
		AuthMethod: AuthModeBasic,
	}, nil
}

// Name returns the authenticator name.
func (a *BasicAuthenticator) Name() string {
	return string(AuthModeBasic)
}

// Priority returns the authenticator priority (lower = tried first). Basic
// auth runs after JWT since a Bearer token is a stronger signal than a
// password sent on every request.
func (a *BasicAuthenticator) Priority() int {
	return 25
}

// GetWWWAuthenticateHeader returns the WWW-Authenticate header value sent
// with 401 responses.
func (a *BasicAuthenticator) GetWWWAuthenticateHeader() string {
	return a.manager.GetWWWAuthenticateHeader()
}
