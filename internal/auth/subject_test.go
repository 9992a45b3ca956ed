// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"testing"

	"github.com/trellisldp/webac/internal/webac"
)

func TestAuthSubject_ToSession_Anonymous(t *testing.T) {
	tests := []struct {
		name    string
		subject *AuthSubject
	}{
		{"nil subject", nil},
		{"empty agent id", &AuthSubject{AgentID: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := tt.subject.ToSession()
			if session.Agent != webac.AnonymousAgent {
				t.Errorf("Agent = %v, want %v", session.Agent, webac.AnonymousAgent)
			}
			if session.HasDelegator {
				t.Error("anonymous session should not carry a delegator")
			}
		})
	}
}

func TestAuthSubject_ToSession_Agent(t *testing.T) {
	subject := &AuthSubject{AgentID: "alice", AuthMethod: AuthModeBasic}

	session := subject.ToSession()

	if session.Agent != webac.IRI(AgentNamespace+"alice") {
		t.Errorf("Agent = %v, want %v", session.Agent, AgentNamespace+"alice")
	}
	if session.HasDelegator {
		t.Error("session without DelegatedBy should not set HasDelegator")
	}
}

func TestAuthSubject_ToSession_Delegation(t *testing.T) {
	subject := &AuthSubject{AgentID: "bob", DelegatedBy: "carol", AuthMethod: AuthModeJWT}

	session := subject.ToSession()

	if session.Agent != webac.IRI(AgentNamespace+"bob") {
		t.Errorf("Agent = %v, want %v", session.Agent, AgentNamespace+"bob")
	}
	if !session.HasDelegator {
		t.Fatal("expected HasDelegator to be true")
	}
	if session.DelegatedBy != webac.IRI(AgentNamespace+"carol") {
		t.Errorf("DelegatedBy = %v, want %v", session.DelegatedBy, AgentNamespace+"carol")
	}
}

func TestAuthMode_String_Values(t *testing.T) {
	if AuthModeBasic.String() != "basic" {
		t.Errorf("AuthModeBasic.String() = %v, want basic", AuthModeBasic.String())
	}
	if AuthModeJWT.String() != "jwt" {
		t.Errorf("AuthModeJWT.String() = %v, want jwt", AuthModeJWT.String())
	}
}
