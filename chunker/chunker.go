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


// Package chunker splits crawled pages into overlapping text windows.
//
// Splitting is delegated to langchaingo's recursive character splitter,
// which prefers paragraph, line and word boundaries before cutting inside a
// word. Sizes are measured in characters (runes).
package chunker

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/poiesic/docgen/core"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the default maximum number of characters per chunk.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the default number of characters shared by
	// consecutive chunks.
	DefaultChunkOverlap = 200
)

var (
	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidChunkOverlap is returned when the overlap is negative or not
	// smaller than the chunk size.
	ErrInvalidChunkOverlap = errors.New("chunk overlap must be between 0 and chunk size")
)

// Chunker splits raw documents into chunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
	splitter     textsplitter.TextSplitter
	logger       *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) error {
		if size <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidChunkSize, size)
		}
		c.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between consecutive chunks in characters.
func WithChunkOverlap(overlap int) Option {
	return func(c *Chunker) error {
		if overlap < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidChunkOverlap, overlap)
		}
		c.chunkOverlap = overlap
		return nil
	}
}

// WithSeparators replaces the preferred split points, most significant first.
// The default is paragraph, line, word, then character.
func WithSeparators(separators ...string) Option {
	return func(c *Chunker) error {
		if len(separators) > 0 {
			c.separators = separators
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a Chunker. Defaults are DefaultChunkSize and DefaultChunkOverlap.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   []string{"\n\n", "\n", " ", ""},
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.chunkOverlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d, size %d", ErrInvalidChunkOverlap, c.chunkOverlap, c.chunkSize)
	}

	c.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.chunkSize),
		textsplitter.WithChunkOverlap(c.chunkOverlap),
		textsplitter.WithSeparators(c.separators),
	)
	c.logger = c.logger.With("component", "chunker")

	return c, nil
}

// ChunkSize returns the configured maximum chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// ChunkOverlap returns the configured overlap.
func (c *Chunker) ChunkOverlap() int {
	return c.chunkOverlap
}

// Split splits every document and returns the chunks in document order.
// Each chunk receives its own copy of the parent metadata, and URL is taken
// from the parent's "url" metadata when it is a string.
func (c *Chunker) Split(docs []core.RawDocument) ([]core.Chunk, error) {
	if len(docs) == 0 {
		return []core.Chunk{}, nil
	}

	input := make([]schema.Document, len(docs))
	for i, doc := range docs {
		input[i] = schema.Document{
			PageContent: doc.PageContent,
			Metadata:    doc.Metadata,
		}
	}

	split, err := textsplitter.SplitDocuments(c.splitter, input)
	if err != nil {
		return nil, fmt.Errorf("splitting documents: %w", err)
	}

	chunks := make([]core.Chunk, 0, len(split))
	for _, doc := range split {
		metadata := maps.Clone(doc.Metadata)
		if metadata == nil {
			metadata = map[string]any{}
		}
		url, _ := metadata["url"].(string)
		chunks = append(chunks, core.Chunk{
			PageContent: doc.PageContent,
			Metadata:    metadata,
			URL:         url,
		})
	}

	c.logger.Debug("split documents", "documents", len(docs), "chunks", len(chunks))
	return chunks, nil
}
