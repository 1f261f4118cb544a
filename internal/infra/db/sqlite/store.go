// File: internal/infra/db/sqlite/store.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.SessionStore = (*Store)(nil)

// Store is the default persistence adapter: a single local SQLite file,
// the server-side equivalent of the browser's local storage. Identities
// live in a small index table, bundles as opaque JSON blobs keyed by
// identity id.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; last writer wins is the intended model.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS identities (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS bundles (
	identity_id TEXT PRIMARY KEY,
	data        BLOB NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ListIdentities(ctx context.Context) ([]model.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM identities ORDER BY created_at`)
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
	// Identities are immutable after creation: insert only.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (id, name, created_at) VALUES (?, ?, ?)`,
		id.ID, id.Name, id.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (s *Store) FindIdentity(ctx context.Context, id string) (*model.Identity, error) {
	var out model.Identity
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM identities WHERE id = ?`, id).
		Scan(&out.ID, &out.Name, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return &out, nil
}

// DeleteIdentity removes the index entry and its bundle in one
// transaction, keeping the no-orphaned-bundles invariant.
func (s *Store) DeleteIdentity(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM identities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bundles WHERE identity_id = ?`, id); err != nil {
		return fmt.Errorf("cascade bundle delete: %w", err)
	}
	return tx.Commit()
}

func (s *Store) LoadBundle(ctx context.Context, identityID string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM bundles WHERE identity_id = ?`, identityID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	return blob, nil
}

func (s *Store) SaveBundle(ctx context.Context, identityID string, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO bundles (identity_id, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT (identity_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		identityID, blob, time.Now())
	if err != nil {
		return fmt.Errorf("save bundle: %w", err)
	}
	return nil
}

func (s *Store) DeleteBundle(ctx context.Context, identityID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bundles WHERE identity_id = ?`, identityID)
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
