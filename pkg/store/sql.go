package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore implements Store using database/sql.
// It supports both Postgres and SQLite via standard drivers.
//
// Several engine instances may share one database; each SQLStore is scoped to
// a single instance identifier.
type SQLStore struct {
	db       *sql.DB
	instance string
}

func NewSQLStore(db *sql.DB, instance string) *SQLStore {
	return &SQLStore{db: db, instance: instance}
}

const schema = `
CREATE TABLE IF NOT EXISTS record_fields (
	instance TEXT NOT NULL,
	field TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TIMESTAMP,
	PRIMARY KEY (instance, field)
);
`

// Init creates the backing table if it does not exist.
func (s *SQLStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLStore) Has(ctx context.Context, f Field) (bool, error) {
	_, err := s.Get(ctx, f)
	if errors.Is(err, ErrFieldAbsent) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) Get(ctx context.Context, f Field) (string, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT value FROM record_fields WHERE instance = $1 AND field = $2",
		s.instance, string(f))

	var v string
	err := row.Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrFieldAbsent
	}
	if err != nil {
		return "", fmt.Errorf("failed to get field %s: %w", f, err)
	}
	return v, nil
}

const upsert = `
INSERT INTO record_fields (instance, field, value, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (instance, field) DO UPDATE SET
	value = EXCLUDED.value,
	updated_at = EXCLUDED.updated_at
`

func (s *SQLStore) Set(ctx context.Context, f Field, v string) error {
	_, err := s.db.ExecContext(ctx, upsert, s.instance, string(f), v, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set field %s: %w", f, err)
	}
	return nil
}

// Apply upserts the whole batch inside one transaction.
func (s *SQLStore) Apply(ctx context.Context, batch map[Field]string) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now().UTC()
	for f, v := range batch {
		if _, err := tx.ExecContext(ctx, upsert, s.instance, string(f), v, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set field %s: %w", f, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
