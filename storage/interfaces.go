package storage

import (
	"context"

	"github.com/poiesic/docgen/core"
)

// DocumentStore stores document records and answers keyword and vector
// queries over them. Implementations open their connection eagerly in the
// constructor and must be released with Close.
type DocumentStore interface {
	// Insert writes one document record and assigns doc.ID.
	// Failures wrap ErrInsertFailed.
	Insert(ctx context.Context, doc *core.Document) error

	// SearchKeyword ranks documents by keyword relevance of their content.
	// Returns up to limit hits, best first. On failure the result is empty
	// and the error wraps ErrQueryFailed.
	SearchKeyword(ctx context.Context, query string, limit int) ([]*core.ScoredDocument, error)

	// SearchSemantic ranks documents by similarity to an externally computed
	// embedding. Documents stored without a vector never match. On failure
	// the result is empty and the error wraps ErrQueryFailed.
	SearchSemantic(ctx context.Context, vector []float32, limit int) ([]*core.ScoredDocument, error)

	// Close releases the connection. Calling Close more than once is a no-op.
	// Operations after Close return ErrStorageClosed.
	Close() error
}

// SchemaManager creates the document collection.
type SchemaManager interface {
	// EnsureSchema creates the collection if it does not exist.
	// With recreate, an existing collection and its records are dropped first.
	EnsureSchema(ctx context.Context, recreate bool) error
}

// SchemaStore is a DocumentStore that can also manage its schema.
// Every backend in this module implements it.
type SchemaStore interface {
	DocumentStore
	SchemaManager
}
