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


// Package docgen wires the document store, AI provider, crawler and
// pipelines together from a config.Config.
//
//	ws, err := docgen.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ws.Close()
//
//	results, err := ws.Searcher().Search(ctx, "install", 0)
package docgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/docgen/ai"
	"github.com/poiesic/docgen/ai/anthropic"
	"github.com/poiesic/docgen/ai/openai"
	"github.com/poiesic/docgen/chunker"
	"github.com/poiesic/docgen/config"
	"github.com/poiesic/docgen/crawl"
	"github.com/poiesic/docgen/crawl/collector"
	"github.com/poiesic/docgen/crawl/firecrawl"
	"github.com/poiesic/docgen/dispatch"
	"github.com/poiesic/docgen/ingestion"
	"github.com/poiesic/docgen/search"
	"github.com/poiesic/docgen/storage"
	"github.com/poiesic/docgen/storage/badger"
	"github.com/poiesic/docgen/storage/postgres"
	"github.com/poiesic/docgen/storage/weaviate"
)

// ErrConfigRequired is returned by Open when no configuration is given.
var ErrConfigRequired = errors.New("config is required")

// Workspace owns every long-lived resource of a docgen session.
type Workspace struct {
	config     *config.Config
	store      storage.SchemaStore
	provider   ai.AIProvider
	crawler    crawl.Crawler
	pipeline   *ingestion.Pipeline
	searcher   *search.Searcher
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Workspace.
type Option func(*workspaceOptions)

type workspaceOptions struct {
	store    storage.SchemaStore
	provider ai.AIProvider
	crawler  crawl.Crawler
	notify   func(string)
}

// WithStore uses store instead of opening the configured backend.
// The workspace takes ownership and closes it.
func WithStore(store storage.SchemaStore) Option {
	return func(o *workspaceOptions) {
		o.store = store
	}
}

// WithProvider uses provider instead of building one from the LLM settings.
// The workspace takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *workspaceOptions) {
		o.provider = provider
	}
}

// WithCrawler uses crawler instead of the configured one.
func WithCrawler(crawler crawl.Crawler) Option {
	return func(o *workspaceOptions) {
		o.crawler = crawler
	}
}

// WithNotifier receives progress notices from the dispatcher, such as the
// warning printed before a crawl starts.
func WithNotifier(notify func(string)) Option {
	return func(o *workspaceOptions) {
		o.notify = notify
	}
}

// Open builds a workspace from cfg and ensures the document collection
// exists. Without LLM credentials the workspace runs keyword-only: no
// embeddings and the keyword intent classifier.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Workspace, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &workspaceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	ws := &Workspace{
		config: cfg,
		logger: slog.Default().With("component", "workspace"),
	}

	// Open store
	ws.store = options.store
	if ws.store == nil {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		ws.store = store
	}
	if err := ws.store.EnsureSchema(ctx, false); err != nil {
		ws.Close()
		return nil, err
	}

	// Create AI provider
	ws.provider = options.provider
	if ws.provider == nil && cfg.HasLLM() {
		provider, err := openProvider(cfg)
		if err != nil {
			ws.Close()
			return nil, err
		}
		ws.provider = provider
	}
	if ws.provider == nil {
		ws.logger.Warn("no LLM configured, running keyword-only")
	}

	// Create crawler
	ws.crawler = options.crawler
	if ws.crawler == nil {
		crawler, err := openCrawler(cfg)
		if err != nil {
			ws.Close()
			return nil, err
		}
		ws.crawler = crawler
	}
	if ws.crawler == nil {
		ws.logger.Warn("no crawler configured, crawling is disabled", "crawler", cfg.Crawler)
	}

	if err := ws.build(options); err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}

func (ws *Workspace) build(options *workspaceOptions) error {
	splitter, err := chunker.New(
		chunker.WithChunkSize(ws.config.ChunkSize),
		chunker.WithChunkOverlap(ws.config.ChunkOverlap),
	)
	if err != nil {
		return err
	}

	// An injected provider brings its own embedder.
	var embedder ai.Embedder
	if ws.provider != nil && ws.config.EmbeddingEnabled &&
		(options.provider != nil || ws.config.HasEmbeddings()) {
		embedder = ws.provider.Embedder()
	} else if ws.provider != nil {
		ws.logger.Warn("embeddings disabled, semantic search is unavailable")
	}

	pipelineOpts := []ingestion.Option{ingestion.WithEmbedder(embedder)}
	if ws.crawler != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithCrawler(ws.crawler))
	}
	ws.pipeline, err = ingestion.NewPipeline(ws.store, splitter, pipelineOpts...)
	if err != nil {
		return err
	}

	ws.searcher, err = search.NewSearcher(ws.store,
		search.WithEmbedder(embedder),
		search.WithLimit(ws.config.MaxResults),
	)
	if err != nil {
		return err
	}

	var classifier dispatch.IntentClassifier = dispatch.KeywordClassifier{}
	if ws.provider != nil {
		llm, err := dispatch.NewLLMClassifier(ws.provider.ChatModel())
		if err != nil {
			return err
		}
		classifier = llm
	}

	ws.dispatcher, err = dispatch.NewDispatcher(ws.pipeline, ws.searcher, classifier,
		dispatch.WithNotifier(options.notify),
	)
	return err
}

func openStore(ctx context.Context, cfg *config.Config) (storage.SchemaStore, error) {
	switch cfg.StoreBackend {
	case config.BackendBadger:
		return badger.NewStore(cfg.BadgerPath)
	case config.BackendPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	case config.BackendWeaviate:
		return weaviate.NewStore(ctx, weaviate.Config{
			Host:     cfg.WeaviateHost,
			Scheme:   cfg.WeaviateScheme,
			GRPCPort: cfg.WeaviateGRPCPort,
			APIKey:   cfg.WeaviateAPIKey,
		})
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.StoreBackend)
	}
}

func openProvider(cfg *config.Config) (ai.AIProvider, error) {
	aiConfig := cfg.AIConfig()
	if cfg.LLMProvider == ai.BackendAnthropic {
		return anthropic.NewProvider(aiConfig)
	}
	return openai.NewProvider(aiConfig)
}

// openCrawler returns nil without error when Firecrawl is selected but no
// API key is set.
func openCrawler(cfg *config.Config) (crawl.Crawler, error) {
	switch cfg.Crawler {
	case config.CrawlerLocal:
		return collector.New(
			collector.WithMaxDepth(cfg.CrawlMaxDepth),
			collector.WithPageLimit(cfg.CrawlLimit),
		)
	case config.CrawlerFirecrawl:
		if cfg.FirecrawlAPIKey == "" {
			return nil, nil
		}
		return firecrawl.New(cfg.FirecrawlAPIKey,
			firecrawl.WithBaseURL(cfg.FirecrawlAPIURL),
			firecrawl.WithLimit(cfg.CrawlLimit),
		)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownCrawler, cfg.Crawler)
	}
}

// Close releases the AI provider and the store. Later calls return the
// first result.
func (ws *Workspace) Close() error {
	ws.closeOnce.Do(func() {
		if ws.provider != nil {
			if err := ws.provider.Close(); err != nil {
				ws.logger.Error("error closing AI provider", "err", err)
				ws.closeErr = errors.Join(ws.closeErr, err)
			}
		}
		if ws.store != nil {
			if err := ws.store.Close(); err != nil {
				ws.logger.Error("error closing document store", "err", err)
				ws.closeErr = errors.Join(ws.closeErr, err)
			}
		}
	})
	return ws.closeErr
}

// Setup creates the document collection, dropping it first with recreate.
func (ws *Workspace) Setup(ctx context.Context, recreate bool) error {
	return ws.store.EnsureSchema(ctx, recreate)
}

func (ws *Workspace) Config() *config.Config {
	return ws.config
}

func (ws *Workspace) Store() storage.SchemaStore {
	return ws.store
}

// Provider returns the AI provider, or nil when running keyword-only.
func (ws *Workspace) Provider() ai.AIProvider {
	return ws.provider
}

// Crawler returns the crawler, or nil when crawling is disabled.
func (ws *Workspace) Crawler() crawl.Crawler {
	return ws.crawler
}

func (ws *Workspace) Pipeline() *ingestion.Pipeline {
	return ws.pipeline
}

func (ws *Workspace) Searcher() *search.Searcher {
	return ws.searcher
}

func (ws *Workspace) Dispatcher() *dispatch.Dispatcher {
	return ws.dispatcher
}
