// File: internal/usecase/identity_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ IdentityUseCase = (*identityUC)(nil)

type IdentityUseCase interface {
	Create(ctx context.Context, name string) (*model.Identity, error)
	List(ctx context.Context) ([]model.Identity, error)
	Delete(ctx context.Context, id string) error
}

type identityUC struct {
	store    repository.SessionStore
	sessions SessionManager
	log      *zerolog.Logger
}

func NewIdentityUseCase(store repository.SessionStore, sessions SessionManager, logger *zerolog.Logger) *identityUC {
	return &identityUC{store: store, sessions: sessions, log: logger}
}

func (u *identityUC) Create(ctx context.Context, name string) (*model.Identity, error) {
	identity, err := model.NewIdentity(name)
	if err != nil {
		return nil, err
	}
	if err := u.store.SaveIdentity(ctx, *identity); err != nil {
		return nil, err
	}
	u.log.Info().Str("identity_id", identity.ID).Msg("identity created")
	return identity, nil
}

func (u *identityUC) List(ctx context.Context) ([]model.Identity, error) {
	return u.store.ListIdentities(ctx)
}

// Delete removes the index entry and cascades to the session bundle, so
// no orphaned bundle survives. Any active session is evicted; a later
// login for the same id behaves as a first-time login.
func (u *identityUC) Delete(ctx context.Context, id string) error {
	if err := u.store.DeleteIdentity(ctx, id); err != nil {
		return err
	}
	if u.sessions != nil {
		u.sessions.Logout(id)
	}
	u.log.Info().Str("identity_id", id).Msg("identity deleted")
	return nil
}
