// SPDX-License-Identifier: Apache-2.0

package webac

import (
	"context"

	"github.com/trellisldp/webac/internal/logging"
)

// RootWriter is the capability the bootstrapper needs beyond ResourceStore's
// read-only Get: creating the root container and installing its default ACL
// are both mutations the spec places outside C2's contract (§1 Non-goals
// exclude the storage engine itself), so they are modeled as a separate,
// narrow interface a storage adapter opts into.
type RootWriter interface {
	ResourceStore
	// CreateRootContainer creates a BasicContainer at root if none exists.
	CreateRootContainer(ctx context.Context, root IRI) error
	// InstallDefaultACL attaches the given Authorization to root's ACL
	// graph. It is only ever called when root currently has no ACL.
	InstallDefaultACL(ctx context.Context, root IRI, auth Authorization) error
}

// DefaultRootAuthorization is the Authorization installed by the bootstrap
// when the root resource exists but carries no ACL (§4.7): full control for
// every agent, both on the root itself and inheritable by every descendant.
func DefaultRootAuthorization(root IRI) Authorization {
	return Authorization{
		Identifier:   root + "#bootstrap",
		AgentClasses: map[IRI]bool{ClassFoafAgent: true},
		Modes:        ModeSet(AllModes),
		AccessTo:     map[IRI]bool{root: true},
		Default:      map[IRI]bool{root: true},
	}
}

// Bootstrap idempotently ensures root exists as a BasicContainer and carries
// an ACL (C9). It is safe to call on every startup: a root that already has
// both is left untouched.
func Bootstrap(ctx context.Context, store RootWriter, root IRI) error {
	res, err := store.Get(ctx, root)
	if err != nil {
		logging.Error().Err(err).Str("root", string(root)).Msg("bootstrap: root lookup failed")
		return err
	}

	if res.State != StatePresent {
		if err := store.CreateRootContainer(ctx, root); err != nil {
			logging.Error().Err(err).Str("root", string(root)).Msg("bootstrap: failed to create root container")
			return err
		}
		logging.Info().Str("root", string(root)).Msg("bootstrap: created root container")
		res, err = store.Get(ctx, root)
		if err != nil {
			return err
		}
	}

	if res.HasACL {
		return nil
	}

	if err := store.InstallDefaultACL(ctx, root, DefaultRootAuthorization(root)); err != nil {
		logging.Error().Err(err).Str("root", string(root)).Msg("bootstrap: failed to install default ACL")
		return err
	}
	logging.Info().Str("root", string(root)).Msg("bootstrap: installed default root ACL")
	return nil
}
