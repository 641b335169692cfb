package weaviate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/docgen/core"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	additionalScore    = "score"
	additionalDistance = "distance"
)

// documentFields lists the GraphQL fields requested for every hit.
func documentFields(scoreField string) []graphql.Field {
	meta := make([]graphql.Field, 0, len(core.MetadataFields))
	for _, f := range core.MetadataFields {
		meta = append(meta, graphql.Field{Name: f})
	}
	return []graphql.Field{
		{Name: core.PropContent},
		{Name: core.PropMetadata, Fields: meta},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: scoreField}}},
	}
}

// parseGetResponse converts a Get response into scored documents.
// Distances are turned into scores as 1 - distance so higher is better.
func parseGetResponse(res *models.GraphQLResponse, scoreField string) ([]*core.ScoredDocument, error) {
	if res == nil {
		return nil, errors.New("empty response")
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			if e != nil {
				msgs = append(msgs, e.Message)
			}
		}
		return nil, fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}

	get, ok := res.Data["Get"].(map[string]any)
	if !ok {
		return nil, errors.New("response has no Get section")
	}
	raw, _ := get[core.CollectionName].([]any)

	hits := make([]*core.ScoredDocument, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		doc := &core.Document{}
		doc.Content, _ = obj[core.PropContent].(string)
		if meta, ok := obj[core.PropMetadata].(map[string]any); ok {
			doc.Metadata = core.MetadataFromProperties(meta)
		}

		var score float32
		if extra, ok := obj["_additional"].(map[string]any); ok {
			if id, ok := extra["id"].(string); ok {
				doc.ID = core.ID(id)
			}
			value, err := number(extra[scoreField])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", scoreField, err)
			}
			score = value
			if scoreField == additionalDistance {
				score = 1 - value
			}
		}
		hits = append(hits, &core.ScoredDocument{Document: doc, Score: score})
	}
	return hits, nil
}

// number accepts the JSON number or numeric string forms Weaviate uses for
// additional properties.
func number(v any) (float32, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return float32(n), nil
	case float32:
		return n, nil
	case string:
		if n == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(n, 32)
		if err != nil {
			return 0, err
		}
		return float32(f), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
