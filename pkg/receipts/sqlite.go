package receipts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable receipt log.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) a receipt database at path.
// Use ":memory:" for tests.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt db: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS receipts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		op TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT,
		asset TEXT,
		from_account TEXT,
		to_account TEXT,
		amount TEXT,
		at INTEGER NOT NULL,
		prev_hash TEXT NOT NULL,
		hash TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) head(ctx context.Context) (uint64, string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT seq, hash FROM receipts ORDER BY seq DESC LIMIT 1`)
	var seq uint64
	var hash string
	err := row.Scan(&seq, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "genesis", nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to read head: %w", err)
	}
	return seq, hash, nil
}

func (s *SQLiteStore) Record(ctx context.Context, r Receipt) error {
	seq, headHash, err := s.head(ctx)
	if err != nil {
		return err
	}

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.Seq = seq + 1
	r.PrevHash = headHash

	hash, err := computeHash(r)
	if err != nil {
		return err
	}
	r.Hash = hash

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO receipts (seq, id, op, outcome, reason, asset, from_account, to_account, amount, at, prev_hash, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Seq, r.ID, r.Op, r.Outcome, r.Reason, r.Asset, r.From, r.To, r.Amount, r.At, r.PrevHash, r.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// List returns up to limit receipts, oldest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, op, outcome, reason, asset, from_account, to_account, amount, at, prev_hash, hash
		FROM receipts ORDER BY seq ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Receipt
	for rows.Next() {
		var r Receipt
		var reason, asset, from, to, amount sql.NullString
		if err := rows.Scan(&r.Seq, &r.ID, &r.Op, &r.Outcome, &reason, &asset, &from, &to, &amount, &r.At, &r.PrevHash, &r.Hash); err != nil {
			return nil, err
		}
		r.Reason = reason.String
		r.Asset = asset.String
		r.From = from.String
		r.To = to.String
		r.Amount = amount.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Verify walks the stored chain and checks every link and hash.
func (s *SQLiteStore) Verify(ctx context.Context) (bool, string, error) {
	entries, err := s.List(ctx, 1<<31-1)
	if err != nil {
		return false, "", err
	}

	prevHash := "genesis"
	for i, r := range entries {
		if r.PrevHash != prevHash {
			return false, fmt.Sprintf("chain broken at entry %d: expected prev %s, got %s", i+1, prevHash, r.PrevHash), nil
		}
		expected, err := computeHash(r)
		if err != nil {
			return false, "", err
		}
		if r.Hash != expected {
			return false, fmt.Sprintf("entry %d hash mismatch", i+1), nil
		}
		prevHash = r.Hash
	}
	return true, "", nil
}
