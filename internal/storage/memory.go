package storage

import (
	"context"
	"sync"

	"saldo/internal/core"
)

// MemoryStore keeps the ledger in process memory. Used for tests and as the
// throwaway dev backend.
type MemoryStore struct {
	mu    sync.Mutex
	state core.Ledger
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: DefaultLedger()}
}

func (s *MemoryStore) Load(_ context.Context) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLedger(s.state), nil
}

func (s *MemoryStore) Save(_ context.Context, l core.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = copyLedger(l)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// copyLedger snapshots the entry slice so callers cannot mutate shared state.
func copyLedger(l core.Ledger) core.Ledger {
	entries := make([]core.Entry, len(l.Entries))
	copy(entries, l.Entries)
	return core.Ledger{Salary: l.Salary, Entries: entries}
}
