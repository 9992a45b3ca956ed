// SPDX-License-Identifier: Apache-2.0

package webac

import (
	"context"
	"errors"
	"sync"
)

// memStore is a minimal in-memory ResourceStore fixture for tests,
// addressed and populated directly by IRI rather than through the LDP
// store's path-segment machinery.
type memStore struct {
	mu        sync.Mutex
	resources map[IRI]Resource
	failing   map[IRI]bool
	supported map[InteractionModel]bool
}

func newMemStore() *memStore {
	return &memStore{
		resources: map[IRI]Resource{},
		failing:   map[IRI]bool{},
		supported: map[InteractionModel]bool{
			DirectContainer:   true,
			IndirectContainer: true,
		},
	}
}

func (s *memStore) put(r Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.Identifier] = r
}

func (s *memStore) failOn(iri IRI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[iri] = true
}

func (s *memStore) Get(ctx context.Context, iri IRI) (Resource, error) {
	if err := ctx.Err(); err != nil {
		return Resource{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[iri] {
		return Resource{}, errors.New("simulated lookup failure")
	}
	if r, ok := s.resources[iri]; ok {
		return r, nil
	}
	return Resource{Identifier: iri, State: StateMissing}, nil
}

func (s *memStore) SupportedInteractionModels() map[InteractionModel]bool {
	return s.supported
}

// CreateRootContainer and InstallDefaultACL satisfy RootWriter, letting
// memStore double as a bootstrap fixture.
func (s *memStore) CreateRootContainer(ctx context.Context, root IRI) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[root] = Resource{Identifier: root, State: StatePresent, InteractionModel: BasicContainer}
	return nil
}

func (s *memStore) InstallDefaultACL(ctx context.Context, root IRI, auth Authorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.resources[root]
	r.HasACL = true
	var stmts []Statement
	for agent := range auth.Agents {
		stmts = append(stmts, Statement{Subject: auth.Identifier, Predicate: predAgent, Object: agent})
	}
	for class := range auth.AgentClasses {
		stmts = append(stmts, Statement{Subject: auth.Identifier, Predicate: predAgentClass, Object: class})
	}
	for to := range auth.AccessTo {
		stmts = append(stmts, Statement{Subject: auth.Identifier, Predicate: predAccessTo, Object: to})
	}
	for d := range auth.Default {
		stmts = append(stmts, Statement{Subject: auth.Identifier, Predicate: predDefault, Object: d})
	}
	if !auth.Modes.Empty() {
		for _, m := range []Mode{Read, Write, Append, Control} {
			if auth.Modes.Has(m) {
				obj, _ := modeObjectFor(m)
				stmts = append(stmts, Statement{Subject: auth.Identifier, Predicate: predMode, Object: obj})
			}
		}
	}
	r.ACLStatements = stmts
	s.resources[root] = r
	return nil
}

func modeObjectFor(m Mode) (IRI, bool) {
	switch m {
	case Read:
		return objModeRead, true
	case Write:
		return objModeWrite, true
	case Append:
		return objModeAppend, true
	case Control:
		return objModeControl, true
	default:
		return "", false
	}
}

// aclStatement builds a single ACL-graph triple; tests assemble an
// Authorization's ACL graph from several of these.
func aclStatement(subj, pred, obj IRI) Statement {
	return Statement{Subject: subj, Predicate: pred, Object: obj}
}
