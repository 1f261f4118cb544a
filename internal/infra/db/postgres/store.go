// File: internal/infra/db/postgres/store.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.SessionStore = (*Store)(nil)

// Store persists the identity index and session bundles in Postgres,
// for deployments where a shared database replaces the local file.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, url string) (*Store, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.Connect(cctx, url)
	if err != nil {
		return nil, fmt.Errorf("pgxpool connect: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS identities (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS bundles (
	identity_id TEXT PRIMARY KEY REFERENCES identities(id) ON DELETE CASCADE,
	data        JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) ListIdentities(ctx context.Context) ([]model.Identity, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM identities ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	out := make([]model.Identity, 0, 4)
	for rows.Next() {
		var id model.Identity
		if err := rows.Scan(&id.ID, &id.Name, &id.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) SaveIdentity(ctx context.Context, id model.Identity) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO identities (id, name, created_at) VALUES ($1, $2, $3)`,
		id.ID, id.Name, id.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (s *Store) FindIdentity(ctx context.Context, id string) (*model.Identity, error) {
	var out model.Identity
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM identities WHERE id = $1`, id).
		Scan(&out.ID, &out.Name, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return &out, nil
}

// DeleteIdentity relies on ON DELETE CASCADE for the bundle row.
func (s *Store) DeleteIdentity(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) LoadBundle(ctx context.Context, identityID string) ([]byte, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM bundles WHERE identity_id = $1`, identityID).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	return blob, nil
}

func (s *Store) SaveBundle(ctx context.Context, identityID string, blob []byte) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO bundles (identity_id, data, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (identity_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		identityID, blob, time.Now())
	if err != nil {
		return fmt.Errorf("save bundle: %w", err)
	}
	return nil
}

func (s *Store) DeleteBundle(ctx context.Context, identityID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM bundles WHERE identity_id = $1`, identityID)
	return err
}
