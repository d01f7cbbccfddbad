package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"saldo/internal/core"
)

// JSONFileStore persists the ledger as a single JSON document on disk.
// Writes go through a temp file plus rename so a crash can never leave a
// truncated document behind.
type JSONFileStore struct {
	path string
}

func NewJSONFileStore(path string) (*JSONFileStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	s := &JSONFileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.Save(context.Background(), DefaultLedger()); err != nil {
			return nil, fmt.Errorf("initialize ledger file: %w", err)
		}
	}
	return s, nil
}

// Load reads the document. Malformed content degrades to the empty default
// instead of failing: the read path must never break on bad data. A bare
// JSON array is accepted as a legacy format and reinterpreted as entries.
func (s *JSONFileStore) Load(ctx context.Context) (core.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultLedger(), nil
		}
		return core.Ledger{}, fmt.Errorf("read ledger file: %w", err)
	}

	var l core.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		var entries []core.Entry
		if err := json.Unmarshal(data, &entries); err == nil {
			slog.WarnContext(ctx, "Legacy ledger format detected, salary defaults to 0",
				"path", s.path, "entries", len(entries))
			return core.Ledger{Salary: 0, Entries: entries}, nil
		}
		slog.WarnContext(ctx, "Corrupt ledger file, falling back to empty state",
			"path", s.path, "error", err)
		return DefaultLedger(), nil
	}
	if l.Entries == nil {
		l.Entries = []core.Entry{}
	}
	return l, nil
}

// Save writes the whole document atomically.
func (s *JSONFileStore) Save(_ context.Context, l core.Ledger) error {
	if l.Entries == nil {
		l.Entries = []core.Entry{}
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (s *JSONFileStore) Close() error { return nil }
