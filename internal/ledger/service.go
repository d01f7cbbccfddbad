// Package ledger implements the entry lifecycle operations on top of the
// persistence gateway: add, remove, reset, salary update, snapshot.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/storage"
)

// EventPublisher pushes mutation events to a broker. Nil is fine: the
// service then runs local-only.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// Service serializes all ledger operations behind one mutex. The persisted
// document has no versioning, so overlapping read-modify-write cycles would
// lose updates; the mutex makes each operation atomic within the process.
type Service struct {
	mu     sync.Mutex
	store  storage.Store
	events EventPublisher
}

func NewService(store storage.Store, events EventPublisher) *Service {
	return &Service{store: store, events: events}
}

// AddEntryInput is the loose request shape accepted at the boundary. Amount
// may be any JSON value; RawValue is consulted when Amount is absent.
type AddEntryInput struct {
	Amount   any
	RawValue string
	Label    string
	ID       string
}

// Snapshot is the full read view: entries newest first plus fresh totals.
type Snapshot struct {
	Entries []core.Entry
	Totals  core.Totals
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load ledger: %w", err)
	}
	return Snapshot{Entries: state.Entries, Totals: core.Aggregate(state)}, nil
}

// AddEntry normalizes the amount, prepends the new entry and persists the
// updated document. Invalid amounts never mutate state.
func (s *Service) AddEntry(ctx context.Context, in AddEntryInput) (core.Entry, core.Totals, error) {
	raw := in.Amount
	if raw == nil && strings.TrimSpace(in.RawValue) != "" {
		raw = in.RawValue
	}
	amount, err := core.Normalize(raw)
	if err != nil {
		return core.Entry{}, core.Totals{}, err
	}

	rawValue := strings.TrimSpace(in.RawValue)
	if rawValue == "" {
		rawValue = rawText(raw)
	}

	entry := core.Entry{
		ID:        strings.TrimSpace(in.ID),
		Amount:    amount,
		RawValue:  rawValue,
		Label:     strings.TrimSpace(in.Label),
		CreatedAt: time.Now().UTC(),
		Type:      core.EntryTypeExpense,
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return core.Entry{}, core.Totals{}, fmt.Errorf("load ledger: %w", err)
	}

	// Newest first: list reads return reverse-chronological insertion order.
	state.Entries = append([]core.Entry{entry}, state.Entries...)
	if err := s.store.Save(ctx, state); err != nil {
		return core.Entry{}, core.Totals{}, fmt.Errorf("save ledger: %w", err)
	}

	s.publish(ctx, amqp.NewEntryCreatedEvent(entry))
	return entry, core.Aggregate(state), nil
}

// RemoveEntry deletes every entry carrying the id. Ids are unique in
// practice; should duplicates ever exist they all go together, which keeps
// removal idempotent per id.
func (s *Service) RemoveEntry(ctx context.Context, id string) (core.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return core.Totals{}, fmt.Errorf("load ledger: %w", err)
	}

	kept := state.Entries[:0:0]
	for _, e := range state.Entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(state.Entries) {
		return core.Totals{}, core.ErrEntryNotFound
	}
	if kept == nil {
		kept = []core.Entry{}
	}

	state.Entries = kept
	if err := s.store.Save(ctx, state); err != nil {
		return core.Totals{}, fmt.Errorf("save ledger: %w", err)
	}

	s.publish(ctx, amqp.NewEntryRemovedEvent(id))
	return core.Aggregate(state), nil
}

// Reset replaces the whole state with the empty default.
func (s *Service) Reset(ctx context.Context) (core.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := storage.DefaultLedger()
	if err := s.store.Save(ctx, state); err != nil {
		return core.Totals{}, fmt.Errorf("save ledger: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerResetEvent())
	return core.Aggregate(state), nil
}

// SetSalary normalizes and stores the new salary, leaving entries untouched.
func (s *Service) SetSalary(ctx context.Context, amount any) (core.Totals, error) {
	salary, err := core.Normalize(amount)
	if err != nil {
		return core.Totals{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return core.Totals{}, fmt.Errorf("load ledger: %w", err)
	}
	state.Salary = salary
	if err := s.store.Save(ctx, state); err != nil {
		return core.Totals{}, fmt.Errorf("save ledger: %w", err)
	}

	s.publish(ctx, amqp.NewSalaryUpdatedEvent(salary))
	return core.Aggregate(state), nil
}

// publish sends a mutation event. Failures are logged, never surfaced: the
// local write already succeeded.
func (s *Service) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", event.Kind, "entry_id", event.EntryID, "error", err)
	}
}

// rawText preserves the user's original input, trimmed. Numeric input is
// rendered back to its shortest decimal form.
func rawText(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
