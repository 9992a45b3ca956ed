// SPDX-License-Identifier: Apache-2.0

package webac

import "context"

// GroupResolver resolves an agent-group IRI to its set of member agents
// (C3). It is grounded on the teacher's chain-of-responsibility scanning
// style (internal/auth/multi_authenticator.go), here scanning a single
// resource's statements instead of trying authenticators in turn.
type GroupResolver struct {
	store ResourceStore
}

// NewGroupResolver builds a resolver backed by store.
func NewGroupResolver(store ResourceStore) *GroupResolver {
	return &GroupResolver{store: store}
}

// Members returns the set of agent IRIs belonging to group g. If g is
// Missing or Deleted, or the lookup fails, the result is empty — a
// GroupUnresolved condition is never a user-visible error (§7).
func (r *GroupResolver) Members(ctx context.Context, g IRI, root IRI) map[IRI]bool {
	res, err := r.store.Get(ctx, g)
	if err != nil || res.State != StatePresent {
		return nil
	}

	normalizedGroup := Normalize(g, root)
	members := make(map[IRI]bool)
	for _, st := range res.UserStatements {
		if st.Predicate != PredicateHasMember {
			continue
		}
		if Normalize(st.Subject, root) != normalizedGroup {
			continue
		}
		if st.IsBlank || st.Object == "" {
			continue
		}
		members[st.Object] = true
	}
	return members
}
