package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// EntryTypeExpense is the only entry kind the ledger records. The field is
// kept explicit so future kinds can be filtered without a format change.
const EntryTypeExpense = "expense"

type (
	// Entry is a single recorded expense. Immutable once created except
	// for deletion.
	Entry struct {
		ID        string    `json:"id"`
		Amount    float64   `json:"amount"`
		RawValue  string    `json:"rawValue"`
		Label     string    `json:"label"`
		CreatedAt time.Time `json:"createdAt"`
		Type      string    `json:"type"`
	}

	// Ledger is the whole persisted state: a monthly salary and the
	// ordered entry sequence, newest first.
	Ledger struct {
		Salary  float64 `json:"salary"`
		Entries []Entry `json:"entries"`
	}

	// Totals holds the derived figures. Never persisted; recomputed on
	// every read.
	Totals struct {
		Salary        float64 `json:"salary"`
		TotalExpenses float64 `json:"totalExpenses"`
		Remaining     float64 `json:"remaining"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEntryNotFound = errors.New("entry not found")
)

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("empty entry id")
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return ErrInvalidAmount
	}
	return nil
}

// IsExpense reports whether the entry counts toward total expenses.
// Entries without a type are treated as expenses for legacy documents.
func (e Entry) IsExpense() bool {
	return e.Type == "" || e.Type == EntryTypeExpense
}
