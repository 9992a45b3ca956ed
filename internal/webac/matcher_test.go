// SPDX-License-Identifier: Apache-2.0

package webac

import (
	"context"
	"testing"
)

func newTestMatchContext(store ResourceStore) *matchContext {
	return newMatchContext(context.Background(), NewGroupResolver(store), testRoot)
}

func TestMatchesAgent_DirectAgentMatch(t *testing.T) {
	a := &Authorization{Agents: map[IRI]bool{"alice": true}}
	mc := newTestMatchContext(newMemStore())

	if !matchesAgent(a, "alice", mc) {
		t.Error("expected a direct agent match")
	}
	if matchesAgent(a, "bob", mc) {
		t.Error("expected no match for an unlisted agent")
	}
}

func TestMatchesAgent_AdministratorAlwaysMatches(t *testing.T) {
	a := &Authorization{Agents: map[IRI]bool{}}
	mc := newTestMatchContext(newMemStore())

	if !matchesAgent(a, AdministratorAgent, mc) {
		t.Error("expected the administrator agent to match any Authorization")
	}
}

func TestMatchesAgent_FoafAgentClassMatchesEveryone(t *testing.T) {
	a := &Authorization{AgentClasses: map[IRI]bool{ClassFoafAgent: true}}
	mc := newTestMatchContext(newMemStore())

	if !matchesAgent(a, "alice", mc) {
		t.Error("expected foaf:Agent to match an authenticated agent")
	}
	if !matchesAgent(a, AnonymousAgent, mc) {
		t.Error("expected foaf:Agent to match the anonymous agent")
	}
}

func TestMatchesAgent_AuthenticatedAgentClassExcludesAnonymous(t *testing.T) {
	a := &Authorization{AgentClasses: map[IRI]bool{ClassAuthenticatedAgent: true}}
	mc := newTestMatchContext(newMemStore())

	if !matchesAgent(a, "alice", mc) {
		t.Error("expected acl:AuthenticatedAgent to match a named agent")
	}
	if matchesAgent(a, AnonymousAgent, mc) {
		t.Error("expected acl:AuthenticatedAgent to never match the anonymous agent")
	}
}

func TestMatchesAgent_ArbitraryClassMatchesOnlyThatAgent(t *testing.T) {
	a := &Authorization{AgentClasses: map[IRI]bool{"trellis:class/staff": true}}
	mc := newTestMatchContext(newMemStore())

	if !matchesAgent(a, "trellis:class/staff", mc) {
		t.Error("expected an arbitrary class IRI to match only that same IRI as agent")
	}
	if matchesAgent(a, "alice", mc) {
		t.Error("expected an arbitrary class IRI to not match an unrelated agent")
	}
}

func TestMatchesAgent_GroupMembershipMatch(t *testing.T) {
	store := newMemStore()
	group := IRI("trellis:data/group/")
	store.put(Resource{
		Identifier: group,
		State:      StatePresent,
		UserStatements: []Statement{
			{Subject: group, Predicate: PredicateHasMember, Object: "alice"},
		},
	})
	a := &Authorization{AgentGroups: map[IRI]bool{Normalize(group, testRoot): true}}
	mc := newTestMatchContext(store)

	if !matchesAgent(a, "alice", mc) {
		t.Error("expected a group member to match")
	}
	if matchesAgent(a, "bob", mc) {
		t.Error("expected a non-member to not match")
	}
}

func TestMatchesAgent_NoPrincipalsNeverMatches(t *testing.T) {
	a := &Authorization{}
	mc := newTestMatchContext(newMemStore())

	if matchesAgent(a, "alice", mc) {
		t.Error("expected an Authorization with no principals to match nobody")
	}
}

func TestMatches_DelegationRequiresBothPrincipals(t *testing.T) {
	a := &Authorization{Agents: map[IRI]bool{"alice": true, "bob": true}}
	mc := newTestMatchContext(newMemStore())

	session := Session{Agent: "alice", DelegatedBy: "bob", HasDelegator: true}
	if !Matches(a, session, mc) {
		t.Error("expected a match when both delegate and delegator are named")
	}

	session2 := Session{Agent: "alice", DelegatedBy: "mallory", HasDelegator: true}
	if Matches(a, session2, mc) {
		t.Error("expected no match when the delegator is not named by the Authorization")
	}
}

func TestMatches_NoDelegationOnlyChecksAgent(t *testing.T) {
	a := &Authorization{Agents: map[IRI]bool{"alice": true}}
	mc := newTestMatchContext(newMemStore())

	if !Matches(a, Session{Agent: "alice"}, mc) {
		t.Error("expected a plain agent match with no delegation")
	}
	if Matches(a, Session{Agent: "bob"}, mc) {
		t.Error("expected no match for an unrelated agent")
	}
}

func TestMatchContext_MemoizesGroupLookups(t *testing.T) {
	store := newCountingStore()
	group := IRI("trellis:data/group/")
	store.put(Resource{
		Identifier: group,
		State:      StatePresent,
		UserStatements: []Statement{
			{Subject: group, Predicate: PredicateHasMember, Object: "alice"},
		},
	})
	mc := newMatchContext(context.Background(), NewGroupResolver(store), testRoot)

	a := &Authorization{AgentGroups: map[IRI]bool{Normalize(group, testRoot): true}}
	matchesAgent(a, "alice", mc)
	matchesAgent(a, "alice", mc)
	matchesAgent(a, "alice", mc)

	if calls := store.calls.Load(); calls != 1 {
		t.Errorf("store.Get called %d times across 3 lookups of the same group, want 1 (memoized)", calls)
	}
}
