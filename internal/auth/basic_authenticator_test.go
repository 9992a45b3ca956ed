// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBasicAuthenticator_Authenticate_Success(t *testing.T) {
	manager, err := NewBasicAuthManager("testagent", "securepassword123", "trellis")
	if err != nil {
		t.Fatalf("failed to create basic auth manager: %v", err)
	}
	authenticator := NewBasicAuthenticator(manager)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	credentials := base64.StdEncoding.EncodeToString([]byte("testagent:securepassword123"))
	req.Header.Set("Authorization", "Basic "+credentials)

	subject, err := authenticator.Authenticate(context.Background(), req)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if subject.AgentID != "testagent" {
		t.Errorf("AgentID = %v, want testagent", subject.AgentID)
	}
	if subject.AuthMethod != AuthModeBasic {
		t.Errorf("AuthMethod = %v, want %v", subject.AuthMethod, AuthModeBasic)
	}
}

func TestBasicAuthenticator_Authenticate_Errors(t *testing.T) {
	manager, err := NewBasicAuthManager("testagent", "securepassword123", "trellis")
	if err != nil {
		t.Fatalf("failed to create basic auth manager: %v", err)
	}
	authenticator := NewBasicAuthenticator(manager)

	tests := []struct {
		name         string
		setupRequest func(*http.Request)
		wantErr      error
	}{
		{"no credentials", func(r *http.Request) {}, ErrNoCredentials},
		{
			"wrong password",
			func(r *http.Request) {
				r.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("testagent:wrongpassword")))
			},
			ErrInvalidCredentials,
		},
		{
			"wrong agent id",
			func(r *http.Request) {
				r.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("wrongagent:securepassword123")))
			},
			ErrInvalidCredentials,
		},
		{
			"malformed authorization header - no Basic",
			func(r *http.Request) { r.Header.Set("Authorization", "dXNlcjpwYXNz") },
			ErrNoCredentials,
		},
		{
			"malformed authorization header - wrong scheme",
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer some-token") },
			ErrNoCredentials,
		},
		{
			"invalid base64",
			func(r *http.Request) { r.Header.Set("Authorization", "Basic !!invalid!!") },
			ErrInvalidCredentials,
		},
		{
			"missing colon separator",
			func(r *http.Request) {
				r.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("agentpassword")))
			},
			ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setupRequest(req)

			_, err := authenticator.Authenticate(context.Background(), req)
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBasicAuthenticator_Name(t *testing.T) {
	manager, _ := NewBasicAuthManager("agent", "password12345678", "trellis")
	authenticator := NewBasicAuthenticator(manager)

	if authenticator.Name() != string(AuthModeBasic) {
		t.Errorf("Name() = %v, want %v", authenticator.Name(), AuthModeBasic)
	}
}

func TestBasicAuthenticator_Priority(t *testing.T) {
	manager, _ := NewBasicAuthManager("agent", "password12345678", "trellis")
	authenticator := NewBasicAuthenticator(manager)

	if authenticator.Priority() != 25 {
		t.Errorf("Priority() = %v, want 25", authenticator.Priority())
	}
}

func TestBasicAuthenticator_ImplementsInterface(t *testing.T) {
	manager, _ := NewBasicAuthManager("agent", "password12345678", "trellis")
	authenticator := NewBasicAuthenticator(manager)

	var _ Authenticator = authenticator
}

func TestBasicAuthenticator_WWWAuthenticateHeader(t *testing.T) {
	manager, _ := NewBasicAuthManager("agent", "password12345678", "example")
	authenticator := NewBasicAuthenticator(manager)

	header := authenticator.GetWWWAuthenticateHeader()
	if header == "" {
		t.Error("GetWWWAuthenticateHeader() returned empty string")
	}
	if header != `Basic realm="example", charset="UTF-8"` {
		t.Errorf("GetWWWAuthenticateHeader() = %q, unexpected value", header)
	}
}
