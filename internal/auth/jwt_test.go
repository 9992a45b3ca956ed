// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"testing"
	"time"
)

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"valid secret", "this_is_a_very_long_secret_key_with_32_plus_characters", false},
		{"empty secret", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewJWTManager(tt.secret, 24*time.Hour)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewJWTManager() unexpected error = %v", err)
			}
			if manager == nil {
				t.Error("NewJWTManager() returned nil manager")
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager, err := NewJWTManager("this_is_a_very_long_secret_key_for_testing_purposes_12345", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	tests := []struct {
		name        string
		agent       string
		delegatedBy string
	}{
		{"valid token", "alice", ""},
		{"token with delegation", "bob", "carol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := manager.GenerateToken(tt.agent, tt.delegatedBy)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			if token == "" {
				t.Fatal("GenerateToken() returned empty token")
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.Agent != tt.agent {
				t.Errorf("ValidateToken() Agent = %v, want %v", claims.Agent, tt.agent)
			}
			if claims.DelegatedBy != tt.delegatedBy {
				t.Errorf("ValidateToken() DelegatedBy = %v, want %v", claims.DelegatedBy, tt.delegatedBy)
			}
		})
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	manager, err := NewJWTManager("secret_key_for_expiration_test_that_is_long_enough_12345", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"invalid token format", "invalid.token.format"},
		{"empty token", ""},
		{"malformed token", "not_a_jwt_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := manager.ValidateToken(tt.token)
			if err == nil {
				t.Error("ValidateToken() expected error for invalid token, got nil")
			}
			if claims != nil {
				t.Error("ValidateToken() expected nil claims for invalid token")
			}
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager1, err := NewJWTManager("first_secret_key_that_is_long_enough_for_testing_12345", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	manager2, err := NewJWTManager("second_secret_key_that_is_different_from_first_12345", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	token, err := manager1.GenerateToken("alice", "")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := manager2.ValidateToken(token)
	if err == nil {
		t.Error("ValidateToken() expected error when using wrong secret, got nil")
	}
	if claims != nil {
		t.Error("ValidateToken() expected nil claims when using wrong secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	manager, err := NewJWTManager("secret_key_for_expiration_test_that_is_long_enough_12345", -1*time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	token, err := manager.GenerateToken("alice", "")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err == nil {
		t.Error("ValidateToken() expected error for expired token, got nil")
	}
	if claims != nil {
		t.Error("ValidateToken() expected nil claims for expired token")
	}
}
