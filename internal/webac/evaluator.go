// SPDX-License-Identifier: Apache-2.0

package webac

import (
	"context"
	"strings"

	"github.com/trellisldp/webac/internal/logging"
)

// EvaluatorConfig configures an Evaluator (C5).
type EvaluatorConfig struct {
	// Root is the distinguished root IRI that has no parent.
	Root IRI
	// MembershipCheckEnabled toggles the §4.3 membership-resource
	// redirection; maps to the webac.membershipCheck.enabled config key.
	MembershipCheckEnabled bool
}

// Evaluator computes the set of WebAC modes a session holds on a target,
// by walking the resource's ancestor chain (C5). It depends only on the
// ResourceStore and GroupResolver capabilities, so tests can inject an
// in-memory fixture instead of a real storage engine.
type Evaluator struct {
	store    ResourceStore
	resolver *GroupResolver
	cfg      EvaluatorConfig
}

// NewEvaluator builds an Evaluator over store, resolving groups through the
// same store.
func NewEvaluator(store ResourceStore, cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{
		store:    store,
		resolver: NewGroupResolver(store),
		cfg:      cfg,
	}
}

// AccessModes is the evaluator's public entry point (§4.3).
func (e *Evaluator) AccessModes(ctx context.Context, target IRI, session Session) (ModeSet, error) {
	if session.IsAdministrator() {
		return ModeSet(AllModes), nil
	}

	visited := map[IRI]bool{target: true}
	return e.accessModesInternal(ctx, target, session, visited)
}

func (e *Evaluator) accessModesInternal(ctx context.Context, target IRI, session Session, visited map[IRI]bool) (ModeSet, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	res, err := e.store.Get(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		// A lookup failure for the target itself is treated as Missing.
		logging.Warn().Err(err).Str("iri", string(target)).Msg("target lookup failed, treating as missing")
		res = Resource{Identifier: target, State: StateMissing}
	}

	if res.State == StateDeleted {
		return 0, nil
	}

	mc := newMatchContext(ctx, e.resolver, e.cfg.Root)

	if res.State == StateMissing {
		parent, ok := Parent(target, e.cfg.Root)
		if !ok {
			// Target is the root itself and it is Missing: nothing to
			// walk from.
			return 0, nil
		}
		return e.walk(ctx, parent, target, true, session, mc, visited)
	}

	return e.walkFromResource(ctx, res, target, true, session, mc, visited)
}

// walk fetches cursor and continues the ancestor walk from it. A lookup
// failure here is a LookupFailed condition (§7): it is logged and the walk
// aborts to the empty set without surfacing an error, unless the failure is
// actually the context being canceled, which must propagate.
func (e *Evaluator) walk(ctx context.Context, cursor, target IRI, isTargetLevel bool, session Session, mc *matchContext, visited map[IRI]bool) (ModeSet, error) {
	res, err := e.store.Get(ctx, cursor)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		logging.Warn().Err(&LookupError{IRI: cursor, Err: err}).Msg("ancestor lookup failed, aborting walk")
		return 0, nil
	}
	return e.walkFromResource(ctx, res, target, isTargetLevel, session, mc, visited)
}

// walkFromResource runs the §4.3 ancestor-walk loop starting at an
// already-fetched resource. It owns the membership-resource redirection
// union and the termination logic.
func (e *Evaluator) walkFromResource(ctx context.Context, res Resource, target IRI, isTargetLevel bool, session Session, mc *matchContext, visited map[IRI]bool) (ModeSet, error) {
	var redirected ModeSet
	cursor := res.Identifier

	// Bound the number of hops by the path's segment count: the walk
	// strictly shortens the IRI at each step, so this can never be
	// exceeded by a well-formed ancestor chain; it exists purely as a
	// defensive backstop against a malformed store implementation.
	maxHops := strings.Count(string(cursor), "/") + 2

	for hop := 0; ; hop++ {
		if hop > maxHops {
			return redirected, nil
		}

		if res.State == StatePresent {
			if e.cfg.MembershipCheckEnabled && res.InteractionModel.IsContainer() && res.HasMembershipResource {
				switch res.InteractionModel {
				case DirectContainer, IndirectContainer:
					if e.store.SupportedInteractionModels()[res.InteractionModel] {
						member := res.MembershipResource
						if !visited[member] {
							visited[member] = true
							memberModes, err := e.accessModesInternal(ctx, member, session, visited)
							if err != nil {
								return 0, err
							}
							redirected = redirected.Union(memberModes)
						}
					}
				}
			}

			if res.HasACL {
				modes, contributed := e.applyAuthorizations(res, target, cursor, isTargetLevel, session, mc)
				if contributed {
					return modes.Union(redirected), nil
				}
			}
		}

		if cursor == e.cfg.Root {
			return redirected, nil
		}

		parent, ok := Parent(cursor, e.cfg.Root)
		if !ok {
			return redirected, nil
		}

		var err error
		res, err = e.store.Get(ctx, parent)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			logging.Warn().Err(&LookupError{IRI: parent, Err: err}).Msg("ancestor lookup failed, aborting walk")
			return 0, nil
		}
		cursor = parent
		isTargetLevel = false
	}
}

// applyAuthorizations assembles cursor's ACL graph and folds in every
// Authorization that both applies structurally (accessTo for the
// target-level step, default for a strict ancestor) and matches the
// session (C4). It returns whether at least one Authorization contributed,
// which is what terminates the walk per §4.3.
func (e *Evaluator) applyAuthorizations(res Resource, target, cursor IRI, isTargetLevel bool, session Session, mc *matchContext) (ModeSet, bool) {
	auths := assembleAuthorizations(res.ACLStatements, e.cfg.Root)
	if len(auths) == 0 {
		return 0, false
	}

	normalizedTarget := Normalize(target, e.cfg.Root)
	normalizedCursor := Normalize(cursor, e.cfg.Root)

	var modes ModeSet
	contributed := false
	for _, a := range auths {
		var applies bool
		if isTargetLevel {
			applies = a.AccessTo[normalizedTarget]
		} else {
			applies = a.Default[normalizedCursor]
		}
		if !applies {
			continue
		}
		if !Matches(a, session, mc) {
			continue
		}
		modes = modes.Union(a.Modes)
		contributed = true
	}
	return modes, contributed
}
