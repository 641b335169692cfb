// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/storage"
)

// storedDocument is the JSON value written under each document key.
type storedDocument struct {
	Content  string        `json:"content"`
	Metadata core.Metadata `json:"metadata"`
	Vector   []float32     `json:"vector,omitempty"`
}

// DocumentStore implements storage.SchemaStore on a Badger backend.
type DocumentStore struct {
	backend     *Backend
	ownsBackend bool
	idSeq       *badger.Sequence
	logger      *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ storage.SchemaStore = (*DocumentStore)(nil)

// NewStore opens a Badger database at path and returns a document store
// that owns it.
func NewStore(path string) (storage.SchemaStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrConnectionFailed, err)
	}
	store, err := newDocumentStore(backend, true)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return store, nil
}

// NewDocumentStore creates a document store on an existing backend.
// The caller keeps ownership of the backend.
func NewDocumentStore(backend *Backend) (storage.SchemaStore, error) {
	return newDocumentStore(backend, false)
}

func newDocumentStore(backend *Backend, owns bool) (*DocumentStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is required", storage.ErrConnectionFailed)
	}
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrConnectionFailed, err)
	}
	return &DocumentStore{
		backend:     backend,
		ownsBackend: owns,
		idSeq:       idSeq,
		logger:      slog.Default().With("component", "badger-documents"),
	}, nil
}

// Close releases the ID sequence and, if the store opened it, the backend.
func (s *DocumentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.idSeq.Release()
	if s.ownsBackend {
		err = errors.Join(err, s.backend.Close())
	}
	return err
}

// EnsureSchema is a no-op for an existing collection since Badger has no
// schema. With recreate every stored document is dropped.
func (s *DocumentStore) EnsureSchema(ctx context.Context, recreate bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSchemaFailed, err)
	}
	if !recreate {
		return nil
	}
	if err := s.backend.DropPrefix(documentPrefix + ":"); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSchemaFailed, err)
	}
	s.logger.Info("dropped document collection", "collection", core.CollectionName)
	return nil
}

// Insert stores a document under a new sequence ID and sets doc.ID.
// Vectors are stored normalized to unit length.
func (s *DocumentStore) Insert(ctx context.Context, doc *core.Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	if err := core.ValidateDocument(doc); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInsertFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInsertFailed, err)
	}

	record := storedDocument{
		Content:  doc.Content,
		Metadata: doc.Metadata,
	}
	if len(doc.Vector) > 0 {
		record.Vector = core.NormalizeVector(doc.Vector)
	}
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", storage.ErrInsertFailed, storage.ErrSerializationFailed, err)
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := s.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			if nextID, err = s.idSeq.Next(); err != nil {
				return err
			}
		}
		if err := tx.Set(makeDocumentKey(nextID), value); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		doc.ID = documentID(nextID)
		return nil
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInsertFailed, err)
	}
	return nil
}

// SearchKeyword ranks documents by BM25 over their stemmed content.
func (s *DocumentStore) SearchKeyword(ctx context.Context, query string, limit int) ([]*core.ScoredDocument, error) {
	if s.isClosed() {
		return []*core.ScoredDocument{}, storage.ErrStorageClosed
	}
	if limit <= 0 {
		return []*core.ScoredDocument{}, fmt.Errorf("%w: %w: limit must be positive", storage.ErrQueryFailed, storage.ErrInvalidQuery)
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return []*core.ScoredDocument{}, nil
	}

	docs, err := s.scan(ctx)
	if err != nil {
		return []*core.ScoredDocument{}, err
	}

	stats := make([]termStats, len(docs))
	for i, doc := range docs {
		stats[i] = newTermStats(doc.Content)
	}
	scores := bm25Scores(terms, stats)

	hits := make([]*core.ScoredDocument, 0, len(docs))
	for i, doc := range docs {
		if scores[i] <= 0 {
			continue
		}
		hits = append(hits, &core.ScoredDocument{Document: doc, Score: float32(scores[i])})
	}
	return topK(hits, limit), nil
}

// SearchSemantic ranks documents by cosine similarity to vector.
// Documents stored without a vector or with a different dimension are skipped.
func (s *DocumentStore) SearchSemantic(ctx context.Context, vector []float32, limit int) ([]*core.ScoredDocument, error) {
	if s.isClosed() {
		return []*core.ScoredDocument{}, storage.ErrStorageClosed
	}
	if limit <= 0 {
		return []*core.ScoredDocument{}, fmt.Errorf("%w: %w: limit must be positive", storage.ErrQueryFailed, storage.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return []*core.ScoredDocument{}, fmt.Errorf("%w: %w: empty vector", storage.ErrQueryFailed, storage.ErrInvalidQuery)
	}
	query := core.NormalizeVector(vector)

	docs, err := s.scan(ctx)
	if err != nil {
		return []*core.ScoredDocument{}, err
	}

	hits := make([]*core.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Vector) != len(query) {
			continue
		}
		hits = append(hits, &core.ScoredDocument{
			Document: doc,
			Score:    core.DotProduct(query, doc.Vector),
		})
	}
	return topK(hits, limit), nil
}

func (s *DocumentStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// scan reads every document in key order.
func (s *DocumentStore) scan(ctx context.Context) ([]*core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	var docs []*core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			if !isDocumentKey(item.Key()) {
				continue
			}
			var record storedDocument
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				s.logger.Warn("skipping unreadable document", "key", string(item.Key()), "err", err)
				continue
			}
			key := string(item.KeyCopy(nil))
			docs = append(docs, &core.Document{
				ID:       core.ID(strings.TrimLeft(strings.TrimPrefix(key, documentPrefix+":"), "0")),
				Content:  record.Content,
				Metadata: record.Metadata,
				Vector:   record.Vector,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrQueryFailed, err)
	}
	return docs, nil
}

// topK sorts hits best first, keeping insertion order among equal scores,
// and truncates to limit.
func topK(hits []*core.ScoredDocument, limit int) []*core.ScoredDocument {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
