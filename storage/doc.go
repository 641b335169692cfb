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


// Package storage provides the storage abstraction layer for docgen.
//
// This package defines the DocumentStore interface that decouples the
// ingestion and retrieval pipelines from the document store in use. Three
// backends implement it:
//
//   - storage/weaviate: the production vector database (BM25 and nearVector)
//   - storage/badger: an embedded store for offline use and tests
//   - storage/postgres: PostgreSQL full-text search plus pgvector
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types to enforce abstraction:
//
//	store, err := weaviate.NewStore(ctx, cfg)  // returns storage.SchemaStore
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Record Shape
//
// Every backend stores records in a collection named core.CollectionName
// with a text "content" property and a nested "metadata" object carrying
// the fields listed in core.MetadataFields. Records are never updated.
//
// # Failure Contract
//
// Insert failures wrap ErrInsertFailed, search failures wrap ErrQueryFailed
// and return an empty result, and an unreachable store at construction
// wraps ErrConnectionFailed. Close is idempotent.
//
// # Usage
//
//	store, err := badger.NewStore("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	hits, err := store.SearchKeyword(ctx, "installation guide", 5)
package storage
