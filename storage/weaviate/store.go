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


// Package weaviate implements storage.SchemaStore on a Weaviate vector
// database. Keyword search uses BM25 over the content property and semantic
// search uses nearVector with externally computed embeddings.
package weaviate

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/storage"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/grpc"
)

// Defaults for a local Weaviate instance.
const (
	DefaultHost     = "localhost:8080"
	DefaultScheme   = "http"
	DefaultGRPCPort = 50051
)

// Config holds connection settings.
type Config struct {
	Host     string // REST host and port
	Scheme   string
	GRPCPort int
	APIKey   string // Optional
}

// DefaultConfig returns settings for a local unauthenticated instance.
func DefaultConfig() Config {
	return Config{
		Host:     DefaultHost,
		Scheme:   DefaultScheme,
		GRPCPort: DefaultGRPCPort,
	}
}

// grpcHost derives the gRPC address from the REST host.
func (c Config) grpcHost() string {
	host, _, err := net.SplitHostPort(c.Host)
	if err != nil {
		host = c.Host
	}
	port := c.GRPCPort
	if port == 0 {
		port = DefaultGRPCPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (c Config) sdkConfig() weaviate.Config {
	cfg := weaviate.Config{
		Host:       c.Host,
		Scheme:     c.Scheme,
		GrpcConfig: &grpc.Config{Host: c.grpcHost()},
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Scheme == "" {
		cfg.Scheme = DefaultScheme
	}
	if c.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: c.APIKey}
	}
	return cfg
}

// Store implements storage.SchemaStore on Weaviate.
type Store struct {
	mu     sync.Mutex
	client client
	logger *slog.Logger
}

var _ storage.SchemaStore = (*Store)(nil)

// NewStore connects to Weaviate and checks that it is ready.
func NewStore(ctx context.Context, config Config) (storage.SchemaStore, error) {
	c, err := weaviate.NewClient(config.sdkConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrConnectionFailed, err)
	}
	return newStore(ctx, &sdkClient{c: c})
}

func newStore(ctx context.Context, c client) (*Store, error) {
	ready, err := c.Ready(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrConnectionFailed, err)
	}
	if !ready {
		return nil, fmt.Errorf("%w: weaviate is not ready", storage.ErrConnectionFailed)
	}
	return &Store{
		client: c,
		logger: slog.Default().With("component", "weaviate"),
	}, nil
}

// Close drops the client. The SDK keeps no connection that needs explicit
// release, so this only guards later calls.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client = nil
		s.logger.Debug("closed weaviate store")
	}
	return nil
}

func (s *Store) conn() (client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil, storage.ErrStorageClosed
	}
	return s.client, nil
}

// EnsureSchema creates the document class if it is missing.
func (s *Store) EnsureSchema(ctx context.Context, recreate bool) error {
	c, err := s.conn()
	if err != nil {
		return err
	}

	exists, err := c.ClassExists(ctx, core.CollectionName)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSchemaFailed, err)
	}
	if recreate {
		if exists {
			if err := c.DeleteClass(ctx, core.CollectionName); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSchemaFailed, err)
			}
			s.logger.Info("deleted existing collection", "collection", core.CollectionName)
		} else {
			s.logger.Info("no existing collection to delete", "collection", core.CollectionName)
		}
		exists = false
	}
	if exists {
		s.logger.Debug("collection already exists", "collection", core.CollectionName)
		return nil
	}

	if err := c.CreateClass(ctx, documentClass()); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSchemaFailed, err)
	}
	s.logger.Info("created collection", "collection", core.CollectionName)
	return nil
}

// Insert stores the document under a new UUID and sets doc.ID.
func (s *Store) Insert(ctx context.Context, doc *core.Document) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	if err := core.ValidateDocument(doc); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInsertFailed, err)
	}

	id := uuid.NewString()
	if err := c.CreateObject(ctx, core.CollectionName, id, documentProperties(doc), doc.Vector); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInsertFailed, err)
	}
	doc.ID = core.ID(id)
	return nil
}

// SearchKeyword runs a BM25 query over the content property.
func (s *Store) SearchKeyword(ctx context.Context, query string, limit int) ([]*core.ScoredDocument, error) {
	bm25 := (&graphql.BM25ArgumentBuilder{}).WithQuery(query).WithProperties(core.PropContent)
	return s.get(ctx, getQuery{
		Class:  core.CollectionName,
		Fields: documentFields(additionalScore),
		BM25:   bm25,
		Limit:  limit,
	}, additionalScore)
}

// SearchSemantic runs a nearVector query.
func (s *Store) SearchSemantic(ctx context.Context, vector []float32, limit int) ([]*core.ScoredDocument, error) {
	if _, err := s.conn(); err != nil {
		return []*core.ScoredDocument{}, err
	}
	if len(vector) == 0 {
		return []*core.ScoredDocument{}, fmt.Errorf("%w: %w: empty vector", storage.ErrQueryFailed, storage.ErrInvalidQuery)
	}
	near := (&graphql.NearVectorArgumentBuilder{}).WithVector(vector)
	return s.get(ctx, getQuery{
		Class:      core.CollectionName,
		Fields:     documentFields(additionalDistance),
		NearVector: near,
		Limit:      limit,
	}, additionalDistance)
}

func (s *Store) get(ctx context.Context, q getQuery, scoreField string) ([]*core.ScoredDocument, error) {
	c, err := s.conn()
	if err != nil {
		return []*core.ScoredDocument{}, err
	}
	if q.Limit <= 0 {
		return []*core.ScoredDocument{}, fmt.Errorf("%w: %w: limit must be positive", storage.ErrQueryFailed, storage.ErrInvalidQuery)
	}

	res, err := c.Get(ctx, q)
	if err != nil {
		return []*core.ScoredDocument{}, fmt.Errorf("%w: %w", storage.ErrQueryFailed, err)
	}
	hits, err := parseGetResponse(res, scoreField)
	if err != nil {
		return []*core.ScoredDocument{}, fmt.Errorf("%w: %w", storage.ErrQueryFailed, err)
	}
	return hits, nil
}
