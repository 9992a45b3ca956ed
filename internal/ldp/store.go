// SPDX-License-Identifier: Apache-2.0

// Package ldp provides an in-memory reference implementation of the
// Resource Lookup capability (C2) that internal/webac depends on.
// spec.md's Non-goals explicitly exclude "the storage engine that
// materializes resources"; this package exists only so the evaluator, the
// filter, and cmd/server have something concrete to run against in tests
// and the demo binary.
package ldp

import (
	"context"
	"sync"

	"github.com/trellisldp/webac/internal/webac"
)

// entry is the store's internal record for one IRI.
type entry struct {
	state              webac.State
	interactionModel   webac.InteractionModel
	hasACL             bool
	membershipResource webac.IRI
	hasMembership      bool
	aclStatements      []webac.Statement
	userStatements     []webac.Statement
}

// Store is a thread-safe, in-memory ResourceStore and RootWriter. It
// represents the resource tree as a flat map keyed by IRI, which is
// sufficient for the ancestor-walk semantics webac.Evaluator needs: parent
// IRIs are derived structurally by webac.Parent, not by any tree pointer
// this store maintains.
type Store struct {
	mu      sync.RWMutex
	entries map[webac.IRI]*entry
	// supported records which interaction models this deployment honors
	// for the membership-resource redirection (§4.3).
	supported map[webac.InteractionModel]bool
}

// NewStore builds an empty Store that supports every interaction model.
func NewStore() *Store {
	return &Store{
		entries: make(map[webac.IRI]*entry),
		supported: map[webac.InteractionModel]bool{
			webac.RDFSource:        true,
			webac.NonRDFSource:     true,
			webac.Container:        true,
			webac.BasicContainer:   true,
			webac.DirectContainer:  true,
			webac.IndirectContainer: true,
		},
	}
}

// Get implements webac.ResourceStore.
func (s *Store) Get(ctx context.Context, iri webac.IRI) (webac.Resource, error) {
	if err := ctx.Err(); err != nil {
		return webac.Resource{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[iri]
	if !ok {
		return webac.Resource{Identifier: iri, State: webac.StateMissing}, nil
	}
	return webac.Resource{
		Identifier:            iri,
		State:                 e.state,
		HasACL:                e.hasACL,
		InteractionModel:      e.interactionModel,
		MembershipResource:    e.membershipResource,
		HasMembershipResource: e.hasMembership,
		ACLStatements:         append([]webac.Statement(nil), e.aclStatements...),
		UserStatements:        append([]webac.Statement(nil), e.userStatements...),
	}, nil
}

// SupportedInteractionModels implements webac.ResourceStore.
func (s *Store) SupportedInteractionModels() map[webac.InteractionModel]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[webac.InteractionModel]bool, len(s.supported))
	for k, v := range s.supported {
		out[k] = v
	}
	return out
}

// SetUnsupported removes model from the supported set, for tests that
// exercise the "server doesn't honor this container kind" branch of the
// membership-resource redirection.
func (s *Store) SetUnsupported(model webac.InteractionModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.supported, model)
}

// PutResource marks a resource present and sets its interaction model,
// without touching its membership resource, ACL or user statements.
func (s *Store) PutResource(iri webac.IRI, model webac.InteractionModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(iri)
	e.state = webac.StatePresent
	e.interactionModel = model
}

// SetMembershipResource records member as container's membership-resource.
// It does not change container's interaction model, which PutResource sets.
func (s *Store) SetMembershipResource(container, member webac.IRI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(container)
	e.membershipResource = member
	e.hasMembership = true
}

// SetACL installs an ACL graph (raw statements) on iri.
func (s *Store) SetACL(iri webac.IRI, statements []webac.Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(iri)
	e.state = webac.StatePresent
	e.hasACL = true
	e.aclStatements = statements
}

// SetUserStatements installs the resource's own (non-ACL) triples, used by
// the Group Resolver to discover group membership.
func (s *Store) SetUserStatements(iri webac.IRI, statements []webac.Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(iri)
	e.state = webac.StatePresent
	e.userStatements = statements
}

// Delete marks iri as a tombstone (§3's Deleted variant).
func (s *Store) Delete(iri webac.IRI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(iri)
	e.state = webac.StateDeleted
}

func (s *Store) entryLocked(iri webac.IRI) *entry {
	e, ok := s.entries[iri]
	if !ok {
		e = &entry{state: webac.StatePresent}
		s.entries[iri] = e
	}
	return e
}

// CreateRootContainer implements webac.RootWriter.
func (s *Store) CreateRootContainer(ctx context.Context, root webac.IRI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.PutResource(root, webac.BasicContainer)
	return nil
}

// InstallDefaultACL implements webac.RootWriter.
func (s *Store) InstallDefaultACL(ctx context.Context, root webac.IRI, auth webac.Authorization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.SetACL(root, authorizationToStatements(root, auth))
	return nil
}

// authorizationToStatements re-derives ACL triples from an already-assembled
// Authorization, for the one case (bootstrap) where the caller builds an
// Authorization directly instead of parsing them from RDF.
func authorizationToStatements(subject webac.IRI, a webac.Authorization) []webac.Statement {
	var stmts []webac.Statement
	for class := range a.AgentClasses {
		stmts = append(stmts, webac.Statement{Subject: subject, Predicate: "http://www.w3.org/ns/auth/acl#agentClass", Object: class})
	}
	for agent := range a.Agents {
		stmts = append(stmts, webac.Statement{Subject: subject, Predicate: "http://www.w3.org/ns/auth/acl#agent", Object: agent})
	}
	for group := range a.AgentGroups {
		stmts = append(stmts, webac.Statement{Subject: subject, Predicate: "http://www.w3.org/ns/auth/acl#agentGroup", Object: group})
	}
	for mode, pred := range map[webac.Mode]webac.IRI{
		webac.Read:    "http://www.w3.org/ns/auth/acl#Read",
		webac.Write:   "http://www.w3.org/ns/auth/acl#Write",
		webac.Append:  "http://www.w3.org/ns/auth/acl#Append",
		webac.Control: "http://www.w3.org/ns/auth/acl#Control",
	} {
		if a.Modes.Has(mode) {
			stmts = append(stmts, webac.Statement{Subject: subject, Predicate: "http://www.w3.org/ns/auth/acl#mode", Object: pred})
		}
	}
	for target := range a.AccessTo {
		stmts = append(stmts, webac.Statement{Subject: subject, Predicate: "http://www.w3.org/ns/auth/acl#accessTo", Object: target})
	}
	for target := range a.Default {
		stmts = append(stmts, webac.Statement{Subject: subject, Predicate: "http://www.w3.org/ns/auth/acl#default", Object: target})
	}
	return stmts
}
