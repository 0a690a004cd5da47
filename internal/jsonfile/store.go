// Package jsonfile persists the ledger document as a single
// pretty-printed JSON file, guarded by a cross-process file lock.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"marginbook/internal/domain/document"
	"marginbook/internal/normalize"

	"github.com/gofrs/flock"
)

const (
	lockTimeout = 3 * time.Second
	lockRetry   = 100 * time.Millisecond
)

// Store implements repository.DocumentStore on a JSON file. The lock
// lives on a sidecar .lock file so the document itself can be replaced
// atomically underneath it.
type Store struct {
	path     string
	fileLock *flock.Flock
}

// New creates a store for the given file path. The file does not have
// to exist yet.
func New(path string) *Store {
	return &Store{
		path:     path,
		fileLock: flock.New(path + ".lock"),
	}
}

// Path returns the location of the live document file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted document. A missing or empty file reads as
// an empty canonical document. The file contents are decoded leniently:
// a hand-edited record with broken fields degrades to defaults instead
// of failing the whole read.
func (s *Store) Load(ctx context.Context) (document.Document, error) {
	unlock, err := s.acquire(ctx)
	if err != nil {
		return document.Document{}, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return document.Empty(), nil
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("read document: %w", err)
	}
	if len(data) == 0 {
		return document.Empty(), nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return document.Document{}, fmt.Errorf("parse document: %w", err)
	}
	return normalize.Decode(raw), nil
}

// Save writes the document atomically: marshal, write a temp file next
// to the live one, rename over it.
func (s *Store) Save(ctx context.Context, doc document.Document) error {
	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// Close releases nothing; the file lock is only held per operation.
func (s *Store) Close() error {
	return nil
}

func (s *Store) acquire(ctx context.Context) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := s.fileLock.TryLockContext(lockCtx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("document file is locked by another process")
	}
	return func() { _ = s.fileLock.Unlock() }, nil
}
