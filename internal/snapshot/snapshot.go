// Package snapshot moves whole documents across the process boundary:
// export to a pretty-printed JSON payload and import back, either
// replacing or merging into the stored document.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marginbook/internal/domain/document"
	"marginbook/internal/normalize"
	"marginbook/internal/store"
)

// ErrParse marks a payload that could not be decoded at all. Parse
// failures abort the import before any mutation.
var ErrParse = errors.New("snapshot parse failed")

// Importer is the subset of the store service an import needs.
type Importer interface {
	Replace(ctx context.Context, doc document.Document) (document.Document, error)
	Merge(ctx context.Context, doc document.Document) (store.MergeResult, error)
}

// Export serializes the document for file transfer. The payload is
// normalized first so an exported file is always clean, and stamped
// with the export time.
func Export(doc document.Document, now time.Time) ([]byte, error) {
	out := normalize.Apply(doc)
	out.Meta.Version = document.Version
	out.Meta.ExportedAt = document.FormatTime(now)

	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return payload, nil
}

// Parse decodes a snapshot payload leniently: any JSON value decodes,
// and malformed records inside it are coerced rather than rejected.
// Only invalid JSON itself fails, and that failure wraps ErrParse.
func Parse(payload []byte) (document.Document, error) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return document.Document{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return normalize.Decode(raw), nil
}

// ImportReplace parses the payload and makes it the authoritative
// document. A parse failure returns before anything is written.
func ImportReplace(ctx context.Context, imp Importer, payload []byte) (document.Document, error) {
	doc, err := Parse(payload)
	if err != nil {
		return document.Document{}, err
	}
	return imp.Replace(ctx, doc)
}

// ImportMerge parses the payload and upserts its records into the
// stored document. A parse failure returns before anything is written;
// after that the merge is best-effort per record.
func ImportMerge(ctx context.Context, imp Importer, payload []byte) (store.MergeResult, error) {
	doc, err := Parse(payload)
	if err != nil {
		return store.MergeResult{}, err
	}
	return imp.Merge(ctx, doc)
}
