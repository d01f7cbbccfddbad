package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"saldo/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the ledger in SQLite. Load and Save still operate on
// the whole document so the gateway contract matches the JSON file store;
// Save replaces all rows inside one transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (core.Ledger, error) {
	l := DefaultLedger()

	err := s.db.QueryRowContext(ctx, `SELECT salary FROM ledger WHERE id = 1`).Scan(&l.Salary)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.Ledger{}, fmt.Errorf("read salary: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, amount, raw_value, label, created_at, entry_type
		FROM entries ORDER BY position ASC`)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("read entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e core.Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Amount, &e.RawValue, &e.Label, &createdAt, &e.Type); err != nil {
			return core.Ledger{}, fmt.Errorf("scan entry: %w", err)
		}
		// Timestamps are stored as RFC 3339 text; a bad value keeps the
		// zero time rather than failing the whole read.
		if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
			e.CreatedAt = t
		}
		l.Entries = append(l.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return core.Ledger{}, fmt.Errorf("iterate entries: %w", err)
	}
	return l, nil
}

func (s *SQLiteStore) Save(ctx context.Context, l core.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger (id, salary) VALUES (1, ?) ON CONFLICT (id) DO UPDATE SET salary = excluded.salary`,
		l.Salary); err != nil {
		return fmt.Errorf("write salary: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	// Insert in slice order; position keeps the newest-first ordering.
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (entry_id, amount, raw_value, label, created_at, entry_type)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range l.Entries {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Amount, e.RawValue, e.Label,
			e.CreatedAt.Format(time.RFC3339Nano), e.Type); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
