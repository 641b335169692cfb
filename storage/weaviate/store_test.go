package weaviate

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

type createdObject struct {
	class  string
	id     string
	props  map[string]any
	vector []float32
}

type fakeClient struct {
	ready     bool
	readyErr  error
	exists    bool
	deleted   int
	created   []*models.Class
	objects   []createdObject
	createErr error
	queries   []getQuery
	response  *models.GraphQLResponse
	getErr    error
}

func (f *fakeClient) Ready(ctx context.Context) (bool, error) { return f.ready, f.readyErr }

func (f *fakeClient) ClassExists(ctx context.Context, class string) (bool, error) {
	return f.exists, nil
}

func (f *fakeClient) DeleteClass(ctx context.Context, class string) error {
	f.deleted++
	f.exists = false
	return nil
}

func (f *fakeClient) CreateClass(ctx context.Context, class *models.Class) error {
	f.created = append(f.created, class)
	f.exists = true
	return nil
}

func (f *fakeClient) CreateObject(ctx context.Context, class, id string, props map[string]any, vector []float32) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.objects = append(f.objects, createdObject{class, id, props, vector})
	return nil
}

func (f *fakeClient) Get(ctx context.Context, q getQuery) (*models.GraphQLResponse, error) {
	f.queries = append(f.queries, q)
	return f.response, f.getErr
}

func newFakeStore(t *testing.T) (*Store, *fakeClient) {
	t.Helper()
	fc := &fakeClient{ready: true}
	store, err := newStore(context.Background(), fc)
	require.NoError(t, err)
	return store, fc
}

func testDocument() *core.Document {
	meta := core.DefaultMetadata(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	meta.Source = "https://docs.example.com"
	return &core.Document{Content: "How to install", Metadata: meta}
}

func TestNewStore_NotReady(t *testing.T) {
	_, err := newStore(context.Background(), &fakeClient{ready: false})
	assert.ErrorIs(t, err, storage.ErrConnectionFailed)

	_, err = newStore(context.Background(), &fakeClient{readyErr: errors.New("refused")})
	assert.ErrorIs(t, err, storage.ErrConnectionFailed)
}

func TestConfig_GRPCHost(t *testing.T) {
	assert.Equal(t, "localhost:50051", DefaultConfig().grpcHost())
	assert.Equal(t, "weaviate.internal:6000", Config{Host: "weaviate.internal:8080", GRPCPort: 6000}.grpcHost())
	assert.Equal(t, "example.com:50051", Config{Host: "example.com"}.grpcHost())
}

func TestConfig_SDKConfig(t *testing.T) {
	cfg := Config{APIKey: "secret"}.sdkConfig()
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultScheme, cfg.Scheme)
	assert.NotNil(t, cfg.AuthConfig)

	assert.Nil(t, DefaultConfig().sdkConfig().AuthConfig)
}

func TestDocumentClass(t *testing.T) {
	class := documentClass()
	assert.Equal(t, "Document", class.Class)
	assert.Equal(t, "none", class.Vectorizer)
	require.Len(t, class.Properties, 2)

	meta := class.Properties[1]
	assert.Equal(t, []string{"object"}, meta.DataType)
	require.Len(t, meta.NestedProperties, len(core.MetadataFields))
	for _, p := range meta.NestedProperties {
		if p.Name == core.FieldCreatedAt {
			assert.Equal(t, []string{"date"}, p.DataType)
		} else {
			assert.Equal(t, []string{"text"}, p.DataType)
		}
	}
}

func TestEnsureSchema(t *testing.T) {
	store, fc := newFakeStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx, false))
	assert.Len(t, fc.created, 1)

	// Existing class is left alone
	require.NoError(t, store.EnsureSchema(ctx, false))
	assert.Len(t, fc.created, 1)
	assert.Zero(t, fc.deleted)

	require.NoError(t, store.EnsureSchema(ctx, true))
	assert.Equal(t, 1, fc.deleted)
	assert.Len(t, fc.created, 2)
}

func TestInsert(t *testing.T) {
	store, fc := newFakeStore(t)
	doc := testDocument()
	doc.Vector = []float32{0.1, 0.2}

	require.NoError(t, store.Insert(context.Background(), doc))
	require.Len(t, fc.objects, 1)

	obj := fc.objects[0]
	assert.Equal(t, "Document", obj.class)
	assert.Equal(t, string(doc.ID), obj.id)
	assert.Equal(t, "How to install", obj.props["content"])
	meta := obj.props["metadata"].(map[string]any)
	assert.Equal(t, "2024-01-02T03:04:05Z", meta["created_at"])
	assert.Len(t, meta, len(core.MetadataFields))
	assert.Equal(t, doc.Vector, obj.vector)
}

func TestInsert_Failure(t *testing.T) {
	store, fc := newFakeStore(t)
	fc.createErr = errors.New("503")

	err := store.Insert(context.Background(), testDocument())
	assert.ErrorIs(t, err, storage.ErrInsertFailed)
}

func TestSearchKeyword(t *testing.T) {
	store, fc := newFakeStore(t)
	fc.response = &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]any{
				"Document": []any{
					map[string]any{
						"content": "pip install docgen",
						"metadata": map[string]any{
							"source":     "https://docs.example.com/install",
							"created_at": "2024-01-02T03:04:05Z",
						},
						"_additional": map[string]any{"id": "abc", "score": "1.25"},
					},
				},
			},
		},
	}

	hits, err := store.SearchKeyword(context.Background(), "install", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, core.ID("abc"), hits[0].Document.ID)
	assert.Equal(t, "https://docs.example.com/install", hits[0].Document.Metadata.Source)
	assert.InDelta(t, 1.25, hits[0].Score, 1e-6)

	require.Len(t, fc.queries, 1)
	assert.NotNil(t, fc.queries[0].BM25)
	assert.Nil(t, fc.queries[0].NearVector)
	assert.Equal(t, 5, fc.queries[0].Limit)
}

func TestSearchSemantic_DistanceToScore(t *testing.T) {
	store, fc := newFakeStore(t)
	fc.response = &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]any{
				"Document": []any{
					map[string]any{
						"content":     "close match",
						"_additional": map[string]any{"id": "x", "distance": 0.25},
					},
				},
			},
		},
	}

	hits, err := store.SearchSemantic(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 0.75, hits[0].Score, 1e-6)
	assert.NotNil(t, fc.queries[0].NearVector)
}

func TestSearch_Errors(t *testing.T) {
	store, fc := newFakeStore(t)
	ctx := context.Background()

	fc.getErr = errors.New("timeout")
	hits, err := store.SearchKeyword(ctx, "x", 5)
	assert.ErrorIs(t, err, storage.ErrQueryFailed)
	assert.Empty(t, hits)

	fc.getErr = nil
	fc.response = &models.GraphQLResponse{Errors: []*models.GraphQLError{{Message: "no such class"}}}
	hits, err = store.SearchKeyword(ctx, "x", 5)
	assert.ErrorIs(t, err, storage.ErrQueryFailed)
	assert.Contains(t, err.Error(), "no such class")
	assert.Empty(t, hits)

	_, err = store.SearchSemantic(ctx, nil, 5)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestSearch_EmptyResult(t *testing.T) {
	store, fc := newFakeStore(t)
	fc.response = &models.GraphQLResponse{
		Data: map[string]models.JSONObject{"Get": map[string]any{"Document": []any{}}},
	}

	hits, err := store.SearchKeyword(context.Background(), "nonexistent-term-xyz", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestClose_Idempotent(t *testing.T) {
	store, _ := newFakeStore(t)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Insert(context.Background(), testDocument()), storage.ErrStorageClosed)
	_, err := store.SearchKeyword(context.Background(), "x", 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = store.SearchKeyword(context.Background(), "x", 0)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = store.SearchSemantic(context.Background(), nil, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

// TestLiveWeaviate runs against a real instance when DOCGEN_TEST_WEAVIATE_HOST is set.
func TestLiveWeaviate(t *testing.T) {
	host := os.Getenv("DOCGEN_TEST_WEAVIATE_HOST")
	if host == "" {
		t.Skip("DOCGEN_TEST_WEAVIATE_HOST not set")
	}
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Host = host

	store, err := NewStore(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.EnsureSchema(ctx, true))
	doc := testDocument()
	doc.Vector = []float32{1, 0, 0}
	require.NoError(t, store.Insert(ctx, doc))

	hits, err := store.SearchSemantic(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, doc.Content, hits[0].Document.Content)
}
