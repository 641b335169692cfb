package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docgen/ai"
	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/storage"
)

// DefaultLimit is the number of results returned when no limit is given.
const DefaultLimit = 5

// NoResultsMessage is what Format returns for an empty result set.
const NoResultsMessage = "No relevant documents found."

// Searcher runs keyword and semantic searches against a document store.
type Searcher struct {
	store    storage.DocumentStore
	embedder ai.Embedder
	limit    int
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithEmbedder enables semantic search.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Searcher) error {
		s.embedder = embedder
		return nil
	}
}

// WithLimit sets the default number of results.
func WithLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
		}
		s.limit = limit
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.DocumentStore, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Searcher{
		store:  store,
		limit:  DefaultLimit,
		logger: slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Limit returns the default result count.
func (s *Searcher) Limit() int {
	return s.limit
}

// Search runs a keyword search. A limit of zero or less uses the default.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, limit, ModeKeyword, nil)
}

// SearchSemantic embeds query and runs a vector search.
func (s *Searcher) SearchSemantic(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, limit, ModeSemantic, nil)
}

// SearchWithMonitor runs a search in the given mode, reporting each stage to monitor.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, limit int, mode Mode, monitor SearchMonitor) ([]core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if limit <= 0 {
		limit = s.limit
	}

	monitor.Start(query, mode)

	var (
		hits []*core.ScoredDocument
		err  error
	)
	switch mode {
	case ModeSemantic:
		if s.embedder == nil {
			return []core.SearchResult{}, ErrEmbedderRequired
		}
		embedding, embedErr := s.embedder.EmbedText(ctx, query)
		if embedErr != nil {
			s.logger.Error("error generating embedding for query", "query", query, "err", embedErr)
			return []core.SearchResult{}, fmt.Errorf("%w: %w", ErrQueryFailed, embedErr)
		}
		monitor.AfterEmbedding(len(embedding))
		hits, err = s.store.SearchSemantic(ctx, embedding, limit)
	default:
		hits, err = s.store.SearchKeyword(ctx, query, limit)
	}
	if err != nil {
		s.logger.Error("error querying document store", "query", query, "mode", mode, "err", err)
		return []core.SearchResult{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	monitor.AfterStoreQuery(hits)

	results := make([]core.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, hit.Result())
	}
	s.logger.Debug("search finished", "query", query, "mode", mode, "results", len(results))

	monitor.Finish(results)
	return results, nil
}

// Format renders results as numbered source and content blocks separated
// by "---" lines.
func Format(results []core.SearchResult) string {
	if len(results) == 0 {
		return NoResultsMessage
	}
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf("\n[%d] Source: %s\nContent: %s", i+1, r.Source, r.Content))
	}
	return strings.Join(blocks, "\n---\n")
}
