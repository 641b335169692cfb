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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docgen/ai"
	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/crawl"
	"github.com/poiesic/docgen/storage"
)

// Splitter splits raw pages into chunks. *chunker.Chunker implements it.
type Splitter interface {
	Split(docs []core.RawDocument) ([]core.Chunk, error)
}

// Report describes one CrawlAndStore run.
type Report struct {
	URL    string
	Chunks []core.Chunk // Every chunk attempted, in chunker order
	Stored int
	Failed int
}

// Pipeline orchestrates crawling, chunking, embedding and storing documents.
type Pipeline struct {
	store    storage.DocumentStore
	splitter Splitter
	crawler  crawl.Crawler
	embedder ai.Embedder
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithCrawler sets the crawler used by CrawlAndStore.
func WithCrawler(crawler crawl.Crawler) Option {
	return func(p *Pipeline) error {
		p.crawler = crawler
		return nil
	}
}

// WithEmbedder enables embedding of stored documents.
// Without an embedder documents are stored without vectors.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(p *Pipeline) error {
		p.embedder = embedder
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(store storage.DocumentStore, splitter Splitter, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if splitter == nil {
		return nil, ErrChunkerRequired
	}

	p := &Pipeline{
		store:    store,
		splitter: splitter,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   slog.Default().With("component", "ingestion"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// CrawlAndStore crawls url and stores every chunk of every page.
// A crawl or chunking failure returns an empty report and an error.
// Individual insert failures are logged and counted in Report.Failed.
func (p *Pipeline) CrawlAndStore(ctx context.Context, url string) (*Report, error) {
	report := &Report{URL: url, Chunks: []core.Chunk{}}
	if p.crawler == nil {
		return report, ErrCrawlerRequired
	}

	docs, err := p.crawler.Crawl(ctx, url)
	if err != nil {
		p.logger.Error("crawl failed", "url", url, "err", err)
		if !errors.Is(err, crawl.ErrCrawlFailed) {
			err = fmt.Errorf("%w: %w", crawl.ErrCrawlFailed, err)
		}
		return report, err
	}
	p.logger.Info("crawled site", "url", url, "pages", len(docs))

	chunks, err := p.splitter.Split(docs)
	if err != nil {
		p.logger.Error("chunking failed", "url", url, "err", err)
		return report, fmt.Errorf("%w: %w", ErrChunkingFailed, err)
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if chunk.Metadata == nil {
			chunk.Metadata = map[string]any{}
		}
		if v, ok := chunk.Metadata[core.FieldURL]; !ok || v == nil || v == "" {
			chunk.Metadata[core.FieldURL] = url
		}
		if chunk.URL == "" {
			chunk.URL = url
		}
		report.Chunks = append(report.Chunks, chunk)

		doc := &core.Document{
			Content:  chunk.PageContent,
			Metadata: core.NormalizeMetadataAt(chunk.Metadata, p.now()),
			Vector:   p.embed(ctx, chunk.PageContent),
		}
		if err := p.store.Insert(ctx, doc); err != nil {
			p.logger.Warn("failed to store chunk", "url", chunk.URL, "chunk", i, "err", err)
			report.Failed++
			continue
		}
		report.Stored++
	}

	p.logger.Info("stored crawl", "url", url, "chunks", len(report.Chunks), "stored", report.Stored, "failed", report.Failed)
	return report, nil
}

// AddDocument stores a single document with the given source label.
func (p *Pipeline) AddDocument(ctx context.Context, content, source string) error {
	doc := &core.Document{
		Content:  content,
		Metadata: core.NormalizeMetadataAt(map[string]any{core.FieldSource: source}, p.now()),
		Vector:   p.embed(ctx, content),
	}
	if err := p.store.Insert(ctx, doc); err != nil {
		p.logger.Error("failed to add document", "source", source, "err", err)
		return err
	}
	p.logger.Info("added document", "source", source, "id", doc.ID)
	return nil
}

// embed returns nil when no embedder is configured or embedding fails.
func (p *Pipeline) embed(ctx context.Context, text string) []float32 {
	if p.embedder == nil {
		return nil
	}
	vector, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		p.logger.Warn("embedding failed, storing without vector", "err", err)
		return nil
	}
	return vector
}
