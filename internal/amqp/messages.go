package amqp

import (
	"encoding/json"
	"time"

	"saldo/internal/core"
)

// EventKind labels a ledger mutation.
type EventKind string

const (
	EventEntryCreated  EventKind = "entry_created"
	EventEntryRemoved  EventKind = "entry_removed"
	EventLedgerReset   EventKind = "ledger_reset"
	EventSalaryUpdated EventKind = "salary_updated"
)

// LedgerEvent is published after every successful mutation. Created events
// carry the full entry so the mirror worker never has to read the store.
type LedgerEvent struct {
	Kind      EventKind   `json:"kind"`
	Entry     *core.Entry `json:"entry,omitempty"`
	EntryID   string      `json:"entryId,omitempty"`
	Salary    float64     `json:"salary,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewEntryCreatedEvent(e core.Entry) *LedgerEvent {
	return &LedgerEvent{Kind: EventEntryCreated, Entry: &e, EntryID: e.ID, Timestamp: time.Now()}
}

func NewEntryRemovedEvent(id string) *LedgerEvent {
	return &LedgerEvent{Kind: EventEntryRemoved, EntryID: id, Timestamp: time.Now()}
}

func NewLedgerResetEvent() *LedgerEvent {
	return &LedgerEvent{Kind: EventLedgerReset, Timestamp: time.Now()}
}

func NewSalaryUpdatedEvent(salary float64) *LedgerEvent {
	return &LedgerEvent{Kind: EventSalaryUpdated, Salary: salary, Timestamp: time.Now()}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
