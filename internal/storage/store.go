// Package storage implements the persistence gateway for the ledger
// document. Every store reads and writes the whole state at once.
package storage

import (
	"context"

	"saldo/internal/core"
)

// Store loads and saves the full ledger document.
type Store interface {
	Load(ctx context.Context) (core.Ledger, error)
	Save(ctx context.Context, l core.Ledger) error
	Close() error
}

// DefaultLedger returns the empty state every store degrades to. Entries is
// always a non-nil slice so callers never see null sequences.
func DefaultLedger() core.Ledger {
	return core.Ledger{Salary: 0, Entries: []core.Entry{}}
}
