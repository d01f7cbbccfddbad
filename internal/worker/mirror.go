// Package worker mirrors ledger events into an external spreadsheet.
package worker

import (
	"context"
	"fmt"

	"saldo/internal/amqp"
	"saldo/internal/log"
	"saldo/internal/sheets"
)

// MirrorWorker consumes ledger events and appends created entries to an
// EntryWriter. Removals and resets are logged but not propagated: the sheet
// is an append-only audit trail, not a replica.
type MirrorWorker struct {
	writer sheets.EntryWriter
	logger *log.Logger
}

func NewMirrorWorker(writer sheets.EntryWriter, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		writer: writer,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes a single ledger event. Returning an error requeues
// the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	switch event.Kind {
	case amqp.EventEntryCreated:
		if event.Entry == nil {
			w.logger.WarnContext(ctx, "Entry created event without entry payload")
			return nil
		}
		rowRef, err := w.writer.Append(ctx, *event.Entry)
		if err != nil {
			return fmt.Errorf("mirror entry %s: %w", event.Entry.ID, err)
		}
		w.logger.InfoContext(ctx, "Entry mirrored",
			log.FieldOperation, log.OpMirror,
			log.FieldEntryID, event.Entry.ID,
			"row_ref", rowRef)
		return nil

	case amqp.EventEntryRemoved:
		w.logger.InfoContext(ctx, "Entry removal noted, sheet rows are kept",
			log.FieldEntryID, event.EntryID)
		return nil

	case amqp.EventLedgerReset:
		w.logger.InfoContext(ctx, "Ledger reset noted, sheet rows are kept")
		return nil

	case amqp.EventSalaryUpdated:
		w.logger.InfoContext(ctx, "Salary updated",
			log.FieldSalary, event.Salary)
		return nil

	default:
		w.logger.WarnContext(ctx, "Unknown event kind", "kind", event.Kind)
		return nil
	}
}
