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


package core

import (
	"time"
)

// CollectionName is the name of the document collection in every store.
const CollectionName = "Document"

// Property names of a stored document record.
const (
	PropContent  = "content"
	PropMetadata = "metadata"
)

// Metadata field names as they appear on the wire.
const (
	FieldSource        = "source"
	FieldCreatedAt     = "created_at"
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldLanguage      = "language"
	FieldURL           = "url"
	FieldOGTitle       = "og_title"
	FieldOGDescription = "og_description"
	FieldOGImage       = "og_image"
	FieldTwitterCard   = "twitter_card"
	FieldTwitterImage  = "twitter_image"
)

// MetadataFields lists every metadata field in schema order.
var MetadataFields = []string{
	FieldSource,
	FieldCreatedAt,
	FieldTitle,
	FieldDescription,
	FieldLanguage,
	FieldURL,
	FieldOGTitle,
	FieldOGDescription,
	FieldOGImage,
	FieldTwitterCard,
	FieldTwitterImage,
}

// ID identifies a stored document.
// Each backend picks its own representation (sequence number, UUID, serial key).
type ID string

// Metadata is the fixed metadata schema attached to every stored document.
// Every field always carries a value; see DefaultMetadata.
type Metadata struct {
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Language      string    `json:"language"`
	URL           string    `json:"url"`
	OGTitle       string    `json:"og_title"`
	OGDescription string    `json:"og_description"`
	OGImage       string    `json:"og_image"`
	TwitterCard   string    `json:"twitter_card"`
	TwitterImage  string    `json:"twitter_image"`
}

// Properties renders the metadata as a property map suitable for document
// stores. created_at is rendered as RFC 3339.
func (m Metadata) Properties() map[string]any {
	return map[string]any{
		FieldSource:        m.Source,
		FieldCreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
		FieldTitle:         m.Title,
		FieldDescription:   m.Description,
		FieldLanguage:      m.Language,
		FieldURL:           m.URL,
		FieldOGTitle:       m.OGTitle,
		FieldOGDescription: m.OGDescription,
		FieldOGImage:       m.OGImage,
		FieldTwitterCard:   m.TwitterCard,
		FieldTwitterImage:  m.TwitterImage,
	}
}

// MetadataFromProperties rebuilds Metadata from a property map read back
// from a store. Missing or non-string fields are left empty and an
// unparseable created_at is left zero.
func MetadataFromProperties(props map[string]any) Metadata {
	str := func(key string) string {
		s, _ := props[key].(string)
		return s
	}
	m := Metadata{
		Source:        str(FieldSource),
		Title:         str(FieldTitle),
		Description:   str(FieldDescription),
		Language:      str(FieldLanguage),
		URL:           str(FieldURL),
		OGTitle:       str(FieldOGTitle),
		OGDescription: str(FieldOGDescription),
		OGImage:       str(FieldOGImage),
		TwitterCard:   str(FieldTwitterCard),
		TwitterImage:  str(FieldTwitterImage),
	}
	if ts := str(FieldCreatedAt); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			m.CreatedAt = t.UTC()
		}
	}
	return m
}

// Document is a stored record: chunk text plus normalized metadata.
// Documents are immutable once inserted.
type Document struct {
	ID       ID
	Content  string
	Metadata Metadata
	Vector   []float32 // Optional embedding, computed outside the store
}

// RawDocument is a page returned by a crawler before chunking.
type RawDocument struct {
	PageContent string
	Metadata    map[string]any
}

// Chunk is a transient window of a RawDocument produced by the chunker.
// Metadata is a private copy of the parent's metadata.
type Chunk struct {
	PageContent string
	Metadata    map[string]any
	URL         string
}

// ScoredDocument is a store hit with its relevance score.
// Higher scores are better for every backend.
type ScoredDocument struct {
	Document *Document
	Score    float32
}

// SearchResult is the read-only projection of a store hit shown to users.
type SearchResult struct {
	Content string
	Source  string
	Score   float32
}

// Result projects a scored document into a SearchResult.
func (s *ScoredDocument) Result() SearchResult {
	if s == nil || s.Document == nil {
		return SearchResult{}
	}
	return SearchResult{
		Content: s.Document.Content,
		Source:  s.Document.Metadata.Source,
		Score:   s.Score,
	}
}
