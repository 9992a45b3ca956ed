// SPDX-License-Identifier: Apache-2.0

package webac

import "context"

// matchContext bundles the inputs a single-principal match needs, and the
// group membership cache so the ancestor walk doesn't re-resolve the same
// group twice in one decision.
type matchContext struct {
	ctx      context.Context
	resolver *GroupResolver
	root     IRI
	// groupCache memoizes GroupResolver.Members within one evaluation.
	groupCache map[IRI]map[IRI]bool
}

func newMatchContext(ctx context.Context, resolver *GroupResolver, root IRI) *matchContext {
	return &matchContext{ctx: ctx, resolver: resolver, root: root, groupCache: map[IRI]map[IRI]bool{}}
}

func (m *matchContext) groupMembers(g IRI) map[IRI]bool {
	if members, ok := m.groupCache[g]; ok {
		return members
	}
	members := m.resolver.Members(m.ctx, g, m.root)
	m.groupCache[g] = members
	return members
}

// matchesAgent reports whether Authorization a applies to a single
// principal agent (C4's agent/group match, without the delegation gate —
// that is applied by the caller across both principals).
func matchesAgent(a *Authorization, agent IRI, mc *matchContext) bool {
	if a.Agents[agent] {
		return true
	}
	if agent == AdministratorAgent {
		return true
	}
	for class := range a.AgentClasses {
		switch class {
		case ClassFoafAgent:
			return true
		case ClassAuthenticatedAgent:
			if agent != AnonymousAgent {
				return true
			}
		default:
			if class == agent {
				return true
			}
		}
	}
	for group := range a.AgentGroups {
		if mc.groupMembers(group)[agent] {
			return true
		}
	}
	return false
}

// Matches reports whether Authorization a applies to session against
// target, implementing the full C4 contract including the delegation gate:
// if the session carries a delegator, a must match both principals
// independently. The ACL.AuthenticatedAgent class never matches
// AnonymousAgent (see matchesAgent), which is what gives anonymous
// sessions the §4.3 authenticated-user short-circuit for free.
func Matches(a *Authorization, session Session, mc *matchContext) bool {
	if !matchesAgent(a, session.Agent, mc) {
		return false
	}
	if session.HasDelegator {
		if !matchesAgent(a, session.DelegatedBy, mc) {
			return false
		}
	}
	return true
}
