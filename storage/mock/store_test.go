package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(content string, vector []float32) *core.Document {
	return &core.Document{Content: content, Metadata: core.DefaultMetadata(time.Now()), Vector: vector}
}

func TestMockStore_DefaultBehavior(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, doc("Hello World", []float32{1, 0})))
	require.NoError(t, store.Insert(ctx, doc("goodbye", []float32{0, 1})))

	hits, err := store.SearchKeyword(ctx, "hello", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, core.ID("1"), hits[0].Document.ID)

	hits, err = store.SearchSemantic(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "goodbye", hits[0].Document.Content)
	assert.Equal(t, 2, store.SearchCalls())
}

func TestMockStore_InsertFailureInjection(t *testing.T) {
	store := NewMockStore()
	boom := errors.New("boom")
	store.InsertFunc = func(ctx context.Context, d *core.Document) error {
		if d.Content == "bad" {
			return boom
		}
		return nil
	}

	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, doc("good", nil)))
	assert.ErrorIs(t, store.Insert(ctx, doc("bad", nil)), boom)

	assert.Equal(t, 2, store.InsertCalls())
	assert.Len(t, store.Documents(), 1)
}

func TestMockStore_Close(t *testing.T) {
	store := NewMockStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.Equal(t, 2, store.CloseCalls())
	assert.ErrorIs(t, store.Insert(context.Background(), doc("x", nil)), storage.ErrStorageClosed)

	store.Reset()
	assert.NoError(t, store.Insert(context.Background(), doc("x", nil)))
}
