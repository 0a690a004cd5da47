package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"marginbook/internal/domain/document"
	"marginbook/internal/normalize"
	"marginbook/internal/repository"
)

// Store implements repository.DocumentStore on a single-row table
// holding the serialized document. The closed flag is atomic so Close
// can overlap an in-flight operation.
type Store struct {
	db     *DB
	closed atomic.Bool
}

// NewStore creates the store and its schema if needed.
func NewStore(db *DB) (*Store, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS ledger_document (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Load reads the persisted document; an absent row is an empty
// canonical document. The payload is decoded leniently like the file
// backend.
func (s *Store) Load(ctx context.Context) (document.Document, error) {
	if s.closed.Load() {
		return document.Document{}, repository.ErrClosed
	}

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM ledger_document WHERE id = 1`,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return document.Empty(), nil
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("load document: %w", err)
	}

	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return document.Document{}, fmt.Errorf("parse document: %w", err)
	}
	return normalize.Decode(raw), nil
}

// Save replaces the persisted document wholesale.
func (s *Store) Save(ctx context.Context, doc document.Document) error {
	if s.closed.Load() {
		return repository.ErrClosed
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger_document (id, payload, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, string(data), document.Now())
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Close closes the underlying database. Further operations return
// repository.ErrClosed.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
