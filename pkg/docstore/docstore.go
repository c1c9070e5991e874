// Package docstore persists named JSON documents as whole units.
//
// Every backend rewrites a document in one operation so a reader never sees a
// partially written collection.
package docstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("docstore: document not found")

// Store reads and writes a single named document.
type Store interface {
	// Load returns ErrNotFound when the document has never been saved.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Backend hands out documents that share one underlying connection.
type Backend interface {
	Document(name string) Store
	Close() error
}
