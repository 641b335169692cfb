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
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Default values for metadata fields that are not empty by default.
const (
	DefaultSource   = "unknown"
	DefaultLanguage = "en"
)

// DefaultMetadata returns the all-defaults metadata record stamped with now.
// It is returned by value so callers can never share or mutate the defaults.
func DefaultMetadata(now time.Time) Metadata {
	return Metadata{
		Source:    DefaultSource,
		CreatedAt: now.UTC(),
		Language:  DefaultLanguage,
	}
}

// fieldRule maps candidate raw keys onto one metadata field.
// The first candidate present with a non-nil value wins.
type fieldRule struct {
	keys []string
	set  func(m *Metadata, v string)
}

var fieldRules = []fieldRule{
	{keys: []string{"source", "url"}, set: func(m *Metadata, v string) { m.Source = v }},
	{keys: []string{"title"}, set: func(m *Metadata, v string) { m.Title = v }},
	{keys: []string{"description"}, set: func(m *Metadata, v string) { m.Description = v }},
	{keys: []string{"language"}, set: func(m *Metadata, v string) { m.Language = v }},
	{keys: []string{"url"}, set: func(m *Metadata, v string) { m.URL = v }},
	{keys: []string{"og:title", "og_title"}, set: func(m *Metadata, v string) { m.OGTitle = v }},
	{keys: []string{"og:description", "og_description"}, set: func(m *Metadata, v string) { m.OGDescription = v }},
	{keys: []string{"og:image", "og_image"}, set: func(m *Metadata, v string) { m.OGImage = v }},
	{keys: []string{"twitter:card", "twitter_card"}, set: func(m *Metadata, v string) { m.TwitterCard = v }},
	{keys: []string{"twitter:image", "twitter_image"}, set: func(m *Metadata, v string) { m.TwitterImage = v }},
}

// NormalizeMetadata maps arbitrary crawl metadata onto the fixed schema,
// stamping created_at with the current time. It never fails: malformed
// input is logged and yields DefaultMetadata.
func NormalizeMetadata(raw map[string]any) Metadata {
	return NormalizeMetadataAt(raw, time.Now())
}

// NormalizeMetadataAt is NormalizeMetadata with an explicit clock value.
// Timestamps present in raw are ignored.
func NormalizeMetadataAt(raw map[string]any, now time.Time) Metadata {
	m, err := resolveMetadata(raw, now)
	if err != nil {
		slog.Default().With("component", "metadata-normalizer").
			Warn("falling back to default metadata", "err", err)
		return DefaultMetadata(now)
	}
	return m
}

func resolveMetadata(raw map[string]any, now time.Time) (Metadata, error) {
	m := DefaultMetadata(now)
	for _, rule := range fieldRules {
		for _, key := range rule.keys {
			v, ok := raw[key]
			if !ok || v == nil {
				continue
			}
			s, err := scalarString(v)
			if err != nil {
				return Metadata{}, fmt.Errorf("%w: key %q: %w", ErrNormalizationFailed, key, err)
			}
			rule.set(&m, s)
			break
		}
	}
	return m, nil
}

// scalarString converts a raw metadata value to a string.
// Lists yield their first element, since some crawlers report repeated
// meta tags as lists.
func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []string:
		if len(t) == 0 {
			return "", nil
		}
		return t[0], nil
	case []any:
		if len(t) == 0 || t[0] == nil {
			return "", nil
		}
		if _, nested := t[0].([]any); nested {
			return "", fmt.Errorf("unsupported nested list")
		}
		return scalarString(t[0])
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
