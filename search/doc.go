// Package search provides document retrieval over a storage.DocumentStore.
//
// The Searcher supports two modes:
//   - Keyword search, ranked by the store's BM25 or full-text scoring
//   - Semantic search, which embeds the query and ranks by vector similarity
//
// Hits are projected to core.SearchResult values and can be rendered for
// display with Format. A store failure is reported as an error wrapping
// ErrQueryFailed, distinct from an empty result.
package search
