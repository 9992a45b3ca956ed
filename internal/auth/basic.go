// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuthManager validates HTTP Basic Authentication credentials against a
// single configured agent. Resolving real credential stores (a user
// database, an external identity provider) is the agent-identity extraction
// policy spec.md's Non-goals place outside the core; this manager is the
// minimal stand-in that lets the demo wiring produce a non-anonymous
// session.
type BasicAuthManager struct {
	agentID      string
	passwordHash []byte // bcrypt hash of password
	realm        string
}

// NewBasicAuthManager creates a Basic Auth manager for a single agent,
// hashing the password with bcrypt at initialization to avoid hashing on
// every request.
func NewBasicAuthManager(agentID, password, realm string) (*BasicAuthManager, error) {
	if agentID == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters for security")
	}
	if realm == "" {
		realm = "trellis"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &BasicAuthManager{
		agentID:      agentID,
		passwordHash: hash,
		realm:        realm,
	}, nil
}

// ValidateCredentials decodes an Authorization header value and returns the
// agent ID it authenticates, using constant-time comparison throughout to
// avoid leaking timing information about a partial match.
func (m *BasicAuthManager) ValidateCredentials(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, "Basic ") {
		return "", fmt.Errorf("invalid authorization header format")
	}

	encoded := strings.TrimPrefix(authHeader, "Basic ")
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode credentials")
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid credentials format")
	}
	agentID, password := parts[0], parts[1]

	if !m.validateCredentials(agentID, password) {
		return "", fmt.Errorf("invalid agent id or password")
	}
	return agentID, nil
}

// validateCredentials compares both principals in constant time; bcrypt's
// CompareHashAndPassword is already timing-safe by design. Both
// comparisons run regardless of the agent id result.
func (m *BasicAuthManager) validateCredentials(agentID, password string) bool {
	idMatch := subtle.ConstantTimeCompare([]byte(agentID), []byte(m.agentID)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil

	return idMatch && passwordMatch
}

// GetWWWAuthenticateHeader returns the WWW-Authenticate header value sent
// with 401 responses.
func (m *BasicAuthManager) GetWWWAuthenticateHeader() string {
	return fmt.Sprintf(`Basic realm=%q, charset="UTF-8"`, m.realm)
}
