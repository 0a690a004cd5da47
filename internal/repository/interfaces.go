package repository

import (
	"context"

	"marginbook/internal/domain/document"
)

// DocumentStore is the persistence capability for the ledger document.
// Two implementations exist (JSON file and SQLite fallback), selected
// at startup; callers never branch on which one is active.
//
// Load returns an empty canonical document when nothing has been
// persisted yet. Save replaces the persisted document wholesale.
type DocumentStore interface {
	Load(ctx context.Context) (document.Document, error)
	Save(ctx context.Context, doc document.Document) error
	Close() error
}
