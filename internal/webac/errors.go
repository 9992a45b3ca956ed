// SPDX-License-Identifier: Apache-2.0

package webac

import "errors"

// Sentinel errors for some of the kinds enumerated in §7. Of the kinds the
// evaluator handles internally, only LookupFailed has a value here, and it
// never escapes the evaluator. MalformedAuthorization and GroupUnresolved
// have no error value: the assembler drops malformed Authorizations and the
// group resolver returns an empty member set.
var (
	// ErrUnauthenticated names the condition under which the enforcement
	// filter answers 401: the required mode is absent and the session's
	// agent is anonymous. The filter writes that response itself and does
	// not return this error.
	ErrUnauthenticated = errors.New("webac: unauthenticated")

	// ErrForbidden names the condition under which the enforcement filter
	// answers 403: the required mode is absent and the session's agent is
	// not anonymous. The filter writes that response itself and does not
	// return this error.
	ErrForbidden = errors.New("webac: forbidden")

	// errLookupFailed marks a resource lookup that failed; the evaluator
	// treats this as Missing for the walk's starting point and as an abort
	// (empty result) for any ancestor.
	errLookupFailed = errors.New("webac: resource lookup failed")
)

// LookupError wraps a ResourceStore error with the IRI that failed,
// letting logs and tests identify which lookup in the walk broke.
type LookupError struct {
	IRI IRI
	Err error
}

func (e *LookupError) Error() string {
	return "webac: lookup failed for " + string(e.IRI) + ": " + e.Err.Error()
}

func (e *LookupError) Unwrap() error { return e.Err }
