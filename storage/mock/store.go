// Package mock provides an in-memory storage.SchemaStore for tests.
package mock

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/storage"
)

// MockStore is a test double for storage.SchemaStore.
// By default it keeps documents in memory, matches keywords by
// case-insensitive substring and ranks vectors by dot product.
// Function fields override the default behavior.
type MockStore struct {
	InsertFunc         func(ctx context.Context, doc *core.Document) error
	SearchKeywordFunc  func(ctx context.Context, query string, limit int) ([]*core.ScoredDocument, error)
	SearchSemanticFunc func(ctx context.Context, vector []float32, limit int) ([]*core.ScoredDocument, error)
	EnsureSchemaFunc   func(ctx context.Context, recreate bool) error

	docs        []*core.Document
	insertCalls int
	searchCalls int
	closeCalls  int
	closed      bool
}

var _ storage.SchemaStore = (*MockStore)(nil)

// NewMockStore creates an empty mock store.
// Note: Returns concrete type to allow test assertions.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Insert records the document, assigning a sequential ID.
func (m *MockStore) Insert(ctx context.Context, doc *core.Document) error {
	m.insertCalls++
	if m.closed {
		return storage.ErrStorageClosed
	}
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, doc); err != nil {
			return err
		}
	} else if err := core.ValidateDocument(doc); err != nil {
		return err
	}
	doc.ID = core.ID(strconv.Itoa(len(m.docs) + 1))
	m.docs = append(m.docs, doc)
	return nil
}

// SearchKeyword returns documents whose content contains query.
func (m *MockStore) SearchKeyword(ctx context.Context, query string, limit int) ([]*core.ScoredDocument, error) {
	m.searchCalls++
	if m.closed {
		return []*core.ScoredDocument{}, storage.ErrStorageClosed
	}
	if m.SearchKeywordFunc != nil {
		return m.SearchKeywordFunc(ctx, query, limit)
	}

	needle := strings.ToLower(query)
	hits := []*core.ScoredDocument{}
	for _, doc := range m.docs {
		if strings.Contains(strings.ToLower(doc.Content), needle) {
			hits = append(hits, &core.ScoredDocument{Document: doc, Score: 1})
		}
	}
	return truncate(hits, limit), nil
}

// SearchSemantic ranks documents with vectors by dot product.
func (m *MockStore) SearchSemantic(ctx context.Context, vector []float32, limit int) ([]*core.ScoredDocument, error) {
	m.searchCalls++
	if m.closed {
		return []*core.ScoredDocument{}, storage.ErrStorageClosed
	}
	if m.SearchSemanticFunc != nil {
		return m.SearchSemanticFunc(ctx, vector, limit)
	}

	hits := []*core.ScoredDocument{}
	for _, doc := range m.docs {
		if len(doc.Vector) == 0 {
			continue
		}
		hits = append(hits, &core.ScoredDocument{Document: doc, Score: core.DotProduct(vector, doc.Vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return truncate(hits, limit), nil
}

// EnsureSchema drops stored documents when recreate is set.
func (m *MockStore) EnsureSchema(ctx context.Context, recreate bool) error {
	if m.closed {
		return storage.ErrStorageClosed
	}
	if m.EnsureSchemaFunc != nil {
		return m.EnsureSchemaFunc(ctx, recreate)
	}
	if recreate {
		m.docs = nil
	}
	return nil
}

// Close marks the store closed. Repeated calls are no-ops.
func (m *MockStore) Close() error {
	m.closeCalls++
	m.closed = true
	return nil
}

// Documents returns the stored documents in insertion order.
func (m *MockStore) Documents() []*core.Document {
	return m.docs
}

// InsertCalls returns the number of Insert calls, including failed ones.
func (m *MockStore) InsertCalls() int {
	return m.insertCalls
}

// SearchCalls returns the number of keyword and semantic searches.
func (m *MockStore) SearchCalls() int {
	return m.searchCalls
}

// CloseCalls returns the number of Close calls.
func (m *MockStore) CloseCalls() int {
	return m.closeCalls
}

// Reset clears stored documents, counters, and injected behavior.
func (m *MockStore) Reset() {
	*m = MockStore{}
}

func truncate(hits []*core.ScoredDocument, limit int) []*core.ScoredDocument {
	if limit >= 0 && len(hits) > limit {
		return hits[:limit]
	}
	return hits
}
