package sheets

import (
	"context"

	"saldo/internal/core"
)

// EntryWriter mirrors ledger entries into an external sheet.
type EntryWriter interface {
	Append(ctx context.Context, e core.Entry) (rowRef string, err error)
}
