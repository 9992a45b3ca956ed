// SPDX-License-Identifier: Apache-2.0

// Package webac implements the Web Access Control authorization engine: the
// access-control evaluator that walks a resource's ancestor chain to compute
// permitted modes, the single-flight decision cache in front of it, and the
// HTTP enforcement filter that consumes both.
package webac

import "strings"

// IRI is an opaque absolute URI. Equality is codepoint-exact except where a
// call site explicitly normalizes a trailing slash (see Normalize).
type IRI string

// Mode is one of the four WebAC access modes. Modes are represented as a
// bitmask so that a ModeSet is a plain, cheaply-copyable value: exactly what
// the cache is allowed to store (see cache.go).
type Mode uint8

const (
	// Read permits GET/HEAD/OPTIONS-shaped access to a resource.
	Read Mode = 1 << iota
	// Write permits PUT/PATCH/DELETE-shaped access to a resource.
	Write
	// Append permits POST-shaped access to a resource; satisfied by Write too.
	Append
	// Control permits reading or modifying the ACL graph itself, and access
	// to audit data.
	Control
)

// AllModes is the full permission set, returned for the administrator
// short-circuit in the evaluator.
const AllModes = Read | Write | Append | Control

// String renders a single mode for logs and metric labels.
func (m Mode) String() string {
	switch m {
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Append:
		return "Append"
	case Control:
		return "Control"
	default:
		return "Unknown"
	}
}

// ModeSet is an immutable set of Mode values, cheap to copy and the only
// thing the Authorization Cache is allowed to store (see DESIGN.md).
type ModeSet Mode

// Has reports whether m is present in the set.
func (s ModeSet) Has(m Mode) bool { return Mode(s)&m != 0 }

// Union returns the set containing every mode in s or other.
func (s ModeSet) Union(other ModeSet) ModeSet { return ModeSet(Mode(s) | Mode(other)) }

// Empty reports whether the set has no modes.
func (s ModeSet) Empty() bool { return s == 0 }

// String renders the set for logs, e.g. "Read,Write".
func (s ModeSet) String() string {
	if s.Empty() {
		return ""
	}
	names := []struct {
		m Mode
		n string
	}{{Read, "Read"}, {Write, "Write"}, {Append, "Append"}, {Control, "Control"}}
	var parts []string
	for _, nm := range names {
		if s.Has(nm.m) {
			parts = append(parts, nm.n)
		}
	}
	return strings.Join(parts, ",")
}

// Well-known agents (vocab constants). AdministratorAgent bypasses the
// evaluator entirely (short-circuit); AnonymousAgent is synthesized by the
// filter when no upstream session is present.
const (
	AdministratorAgent IRI = "trellis:admin"
	AnonymousAgent     IRI = "http://www.w3.org/ns/auth/acl#AnonymousAgent"
)

// Agent classes. FOAF.Agent matches every agent; ACL.AuthenticatedAgent
// matches any agent distinct from AnonymousAgent.
const (
	ClassFoafAgent          IRI = "http://xmlns.com/foaf/0.1/Agent"
	ClassAuthenticatedAgent IRI = "http://www.w3.org/ns/auth/acl#AuthenticatedAgent"
)

// VCard predicate used by the Group Resolver to discover group membership.
const PredicateHasMember IRI = "http://www.w3.org/2006/vcard/ns#hasMember"

// InteractionModel is a tag drawn from the closed LDP interaction-model set.
type InteractionModel string

const (
	RDFSource        InteractionModel = "RDFSource"
	NonRDFSource     InteractionModel = "NonRDFSource"
	Container        InteractionModel = "Container"
	BasicContainer   InteractionModel = "BasicContainer"
	DirectContainer  InteractionModel = "DirectContainer"
	IndirectContainer InteractionModel = "IndirectContainer"
)

// IsContainer reports whether m is Container or one of its specializations.
func (m InteractionModel) IsContainer() bool {
	switch m {
	case Container, BasicContainer, DirectContainer, IndirectContainer:
		return true
	default:
		return false
	}
}

// Normalize strips a trailing "/" from an IRI for comparison purposes,
// except when the value equals root — the root IRI's trailing slash (if
// any) is significant and never stripped. Blank nodes (encoded by callers
// as the empty string) are returned unchanged; matching code must reject
// them explicitly rather than relying on normalization.
func Normalize(iri, root IRI) IRI {
	if iri == root {
		return iri
	}
	s := string(iri)
	if len(s) > 0 && strings.HasSuffix(s, "/") {
		trimmed := IRI(strings.TrimSuffix(s, "/"))
		if trimmed == root {
			return iri
		}
		return trimmed
	}
	return iri
}

// Parent returns the IRI of the prospective parent of target by removing
// its last path segment. The root IRI has no parent; Parent returns
// ("", false) as a signal the walk must stop.
func Parent(target, root IRI) (IRI, bool) {
	if target == root {
		return "", false
	}
	s := strings.TrimSuffix(string(target), "/")
	idx := strings.LastIndex(s, "/")
	if idx < 0 {
		return root, true
	}
	parent := IRI(s[:idx+1])
	if parent == "" {
		return root, true
	}
	return parent, true
}
