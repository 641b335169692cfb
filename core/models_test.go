package core

import (
	"testing"
	"time"
)

func TestMetadataProperties(t *testing.T) {
	created := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	m := Metadata{
		Source:      "https://example.com/a",
		CreatedAt:   created,
		Title:       "A",
		Language:    "fr",
		URL:         "https://example.com/a",
		OGImage:     "https://example.com/a.png",
		TwitterCard: "summary",
	}

	props := m.Properties()
	if len(props) != len(MetadataFields) {
		t.Fatalf("Properties() has %d keys, want %d", len(props), len(MetadataFields))
	}
	for _, field := range MetadataFields {
		if _, ok := props[field]; !ok {
			t.Errorf("Properties() missing field %q", field)
		}
	}
	if got := props[FieldCreatedAt]; got != "2025-03-14T15:09:26Z" {
		t.Errorf("created_at = %v, want RFC 3339", got)
	}

	back := MetadataFromProperties(props)
	if !back.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", back.CreatedAt, created)
	}
	back.CreatedAt, m.CreatedAt = time.Time{}, time.Time{}
	if back != m {
		t.Errorf("MetadataFromProperties() = %+v, want %+v", back, m)
	}
}

func TestMetadataFromProperties_Partial(t *testing.T) {
	m := MetadataFromProperties(map[string]any{
		FieldSource:    "s",
		FieldTitle:     42,
		FieldCreatedAt: "not a date",
	})
	if m.Source != "s" {
		t.Errorf("Source = %q, want %q", m.Source, "s")
	}
	if m.Title != "" {
		t.Errorf("Title = %q, want empty for non-string value", m.Title)
	}
	if !m.CreatedAt.IsZero() {
		t.Errorf("CreatedAt = %v, want zero for unparseable value", m.CreatedAt)
	}
}

func TestScoredDocumentResult(t *testing.T) {
	sd := &ScoredDocument{
		Document: &Document{
			Content:  "body",
			Metadata: Metadata{Source: "https://example.com"},
		},
		Score: 0.5,
	}
	got := sd.Result()
	want := SearchResult{Content: "body", Source: "https://example.com", Score: 0.5}
	if got != want {
		t.Errorf("Result() = %+v, want %+v", got, want)
	}

	var empty *ScoredDocument
	if got := empty.Result(); got != (SearchResult{}) {
		t.Errorf("nil Result() = %+v, want zero value", got)
	}
}
