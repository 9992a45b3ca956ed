// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/trellisldp/webac/internal/ldp"
	"github.com/trellisldp/webac/internal/webac"
)

// resourceHandler is a minimal LDP resource surface sitting behind the
// Access Enforcement Filter: it exists only to give the filter something
// real to guard in the demo binary and integration tests. RDF parsing,
// binary storage, and Memento versioning are the external collaborators
// spec.md's Non-goals place out of scope; this handler trades a faithful
// LDP implementation for just enough behavior to observe enforcement.
func resourceHandler(store *ldp.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := webac.IRI("trellis:data/" + strings.TrimPrefix(r.URL.Path, "/"))

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			res, err := store.Get(r.Context(), target)
			if err != nil || res.State != webac.StatePresent {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/turtle")
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			_ = body
			store.PutResource(target, webac.RDFSource)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			store.Delete(target)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}
