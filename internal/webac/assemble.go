// SPDX-License-Identifier: Apache-2.0

package webac

// ACL predicate and object vocabulary used to assemble Authorization
// records out of the raw triples a ResourceStore returns for an ACL graph.
const (
	predAgent       IRI = "http://www.w3.org/ns/auth/acl#agent"
	predAgentClass  IRI = "http://www.w3.org/ns/auth/acl#agentClass"
	predAgentGroup  IRI = "http://www.w3.org/ns/auth/acl#agentGroup"
	predMode        IRI = "http://www.w3.org/ns/auth/acl#mode"
	predAccessTo    IRI = "http://www.w3.org/ns/auth/acl#accessTo"
	predDefault     IRI = "http://www.w3.org/ns/auth/acl#default"
	predDefaultAlt  IRI = "http://www.w3.org/ns/auth/acl#defaultForNew" // legacy alias some ACL graphs still use
	predRDFType     IRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	objAuthorization IRI = "http://www.w3.org/ns/auth/acl#Authorization"

	objModeRead    IRI = "http://www.w3.org/ns/auth/acl#Read"
	objModeWrite   IRI = "http://www.w3.org/ns/auth/acl#Write"
	objModeAppend  IRI = "http://www.w3.org/ns/auth/acl#Append"
	objModeControl IRI = "http://www.w3.org/ns/auth/acl#Control"
)

func modeForObject(o IRI) (Mode, bool) {
	switch o {
	case objModeRead:
		return Read, true
	case objModeWrite:
		return Write, true
	case objModeAppend:
		return Append, true
	case objModeControl:
		return Control, true
	default:
		return 0, false
	}
}

// assembleAuthorizations groups an ACL graph's statements by subject and
// folds them into Authorization records, dropping malformed ones (§3) and
// blank-node values (§4.4) along the way.
func assembleAuthorizations(statements []Statement, root IRI) []*Authorization {
	bySubject := make(map[IRI]*Authorization)
	order := make([]IRI, 0)

	get := func(subj IRI) *Authorization {
		a, ok := bySubject[subj]
		if !ok {
			a = &Authorization{
				Identifier:   subj,
				Agents:       map[IRI]bool{},
				AgentClasses: map[IRI]bool{},
				AgentGroups:  map[IRI]bool{},
				AccessTo:     map[IRI]bool{},
				Default:      map[IRI]bool{},
			}
			bySubject[subj] = a
			order = append(order, subj)
		}
		return a
	}

	for _, st := range statements {
		if st.Subject == "" {
			continue
		}
		a := get(st.Subject)
		if st.IsBlank {
			// Blank-node values are dropped regardless of predicate.
			continue
		}
		switch st.Predicate {
		case predRDFType:
			// rdf:type acl:Authorization is informational; no field to set.
		case predAgent:
			a.Agents[st.Object] = true
		case predAgentClass:
			a.AgentClasses[st.Object] = true
		case predAgentGroup:
			a.AgentGroups[Normalize(st.Object, root)] = true
		case predMode:
			if m, ok := modeForObject(st.Object); ok {
				a.Modes = a.Modes.Union(ModeSet(m))
			}
		case predAccessTo:
			a.AccessTo[Normalize(st.Object, root)] = true
		case predDefault, predDefaultAlt:
			a.Default[Normalize(st.Object, root)] = true
		}
	}

	out := make([]*Authorization, 0, len(order))
	for _, subj := range order {
		a := bySubject[subj]
		if a.Malformed() {
			continue
		}
		out = append(out, a)
	}
	return out
}
