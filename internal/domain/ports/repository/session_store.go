package repository

import (
	"context"

	"github.com/kilka221/assistant/internal/domain/model"
)

// SessionStore is the persistence port: a small identity index plus one
// opaque JSON blob per identity. Bundles are get/set/delete by key; all
// schema tolerance lives in the decoder, not the store.
//
// Invariant: a bundle exists only while its identity exists.
// DeleteIdentity must cascade to the bundle.
type SessionStore interface {
	ListIdentities(ctx context.Context) ([]model.Identity, error)
	SaveIdentity(ctx context.Context, id model.Identity) error
	FindIdentity(ctx context.Context, id string) (*model.Identity, error)
	DeleteIdentity(ctx context.Context, id string) error

	LoadBundle(ctx context.Context, identityID string) ([]byte, error)
	SaveBundle(ctx context.Context, identityID string, blob []byte) error
	DeleteBundle(ctx context.Context, identityID string) error
}
