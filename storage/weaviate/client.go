package weaviate

import (
	"context"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// getQuery describes one GraphQL Get request.
// Exactly one of BM25 and NearVector is set.
type getQuery struct {
	Class      string
	Fields     []graphql.Field
	BM25       *graphql.BM25ArgumentBuilder
	NearVector *graphql.NearVectorArgumentBuilder
	Limit      int
}

// client is the subset of the Weaviate API the store uses.
type client interface {
	Ready(ctx context.Context) (bool, error)
	ClassExists(ctx context.Context, class string) (bool, error)
	DeleteClass(ctx context.Context, class string) error
	CreateClass(ctx context.Context, class *models.Class) error
	CreateObject(ctx context.Context, class, id string, props map[string]any, vector []float32) error
	Get(ctx context.Context, q getQuery) (*models.GraphQLResponse, error)
}

// sdkClient adapts *weaviate.Client to client.
type sdkClient struct {
	c *weaviate.Client
}

var _ client = (*sdkClient)(nil)

func (s *sdkClient) Ready(ctx context.Context) (bool, error) {
	return s.c.Misc().ReadyChecker().Do(ctx)
}

func (s *sdkClient) ClassExists(ctx context.Context, class string) (bool, error) {
	return s.c.Schema().ClassExistenceChecker().WithClassName(class).Do(ctx)
}

func (s *sdkClient) DeleteClass(ctx context.Context, class string) error {
	return s.c.Schema().ClassDeleter().WithClassName(class).Do(ctx)
}

func (s *sdkClient) CreateClass(ctx context.Context, class *models.Class) error {
	return s.c.Schema().ClassCreator().WithClass(class).Do(ctx)
}

func (s *sdkClient) CreateObject(ctx context.Context, class, id string, props map[string]any, vector []float32) error {
	creator := s.c.Data().Creator().
		WithClassName(class).
		WithID(id).
		WithProperties(props)
	if len(vector) > 0 {
		creator = creator.WithVector(vector)
	}
	_, err := creator.Do(ctx)
	return err
}

func (s *sdkClient) Get(ctx context.Context, q getQuery) (*models.GraphQLResponse, error) {
	get := s.c.GraphQL().Get().
		WithClassName(q.Class).
		WithFields(q.Fields...).
		WithLimit(q.Limit)
	if q.BM25 != nil {
		get = get.WithBM25(q.BM25)
	}
	if q.NearVector != nil {
		get = get.WithNearVector(q.NearVector)
	}
	return get.Do(ctx)
}
