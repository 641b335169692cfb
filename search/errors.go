package search

import "errors"

var (
	// ErrStoreRequired is returned when a document store is not provided.
	ErrStoreRequired = errors.New("document store required")

	// ErrEmbedderRequired is returned by SearchSemantic when no embedder is configured.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrQueryFailed wraps store and embedding failures during a search.
	ErrQueryFailed = errors.New("search query failed")

	// ErrInvalidLimit is returned when the default limit is not positive.
	ErrInvalidLimit = errors.New("limit must be positive")
)
