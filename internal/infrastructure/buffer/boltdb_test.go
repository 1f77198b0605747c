package buffer

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutReplacesPendingItemForPage(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.Put(Item{PageID: "p1", Entity: EntityReorder, Data: []byte(`[1]`)}))
	require.NoError(t, store.Put(Item{PageID: "p1", Entity: EntityReorder, Data: []byte(`[2]`)}))
	require.NoError(t, store.Put(Item{PageID: "p2", Entity: EntityReorder, Data: []byte(`[3]`)}))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	item, ok, err := store.Get(EntityReorder, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[2]`, string(item.Data))
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, OperationReplace, item.Operation)
}

func TestStore_GetBatchOldestFirst(t *testing.T) {
	store := openStore(t)
	base := time.Now()
	require.NoError(t, store.Put(Item{PageID: "a", Entity: EntityReorder, Timestamp: base.Add(2 * time.Second)}))
	require.NoError(t, store.Put(Item{PageID: "b", Entity: EntityReorder, Timestamp: base}))
	require.NoError(t, store.Put(Item{PageID: "c", Entity: EntityReorder, Timestamp: base.Add(time.Second)}))

	items, err := store.GetBatch(2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].PageID)
	assert.Equal(t, "c", items[1].PageID)
}

func TestStore_RemoveKeepsNewerReplacement(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Put(Item{ID: "old", PageID: "p1", Entity: EntityReorder}))
	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.Put(Item{ID: "new", PageID: "p1", Entity: EntityReorder}))
	require.NoError(t, store.Remove(items[0]))
	require.NoError(t, store.Requeue(items[0], errors.New("boom")))

	current, ok, err := store.Get(EntityReorder, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", current.ID)
	assert.Zero(t, current.Retries)
}

func TestStore_RequeueRecordsFailure(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Put(Item{ID: "i1", PageID: "p1", Entity: EntityReorder}))
	item, _, err := store.Get(EntityReorder, "p1")
	require.NoError(t, err)

	require.NoError(t, store.Requeue(item, errors.New("gateway down")))
	item, _, err = store.Get(EntityReorder, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.Retries)
	assert.Equal(t, "gateway down", item.LastError)

	require.NoError(t, store.Remove(item))
	_, ok, err := store.Get(EntityReorder, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DiscardAndCleanup(t *testing.T) {
	store := openStore(t)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Put(Item{PageID: "stale", Entity: EntityReorder, Timestamp: old}))
	require.NoError(t, store.Put(Item{PageID: "fresh", Entity: EntityReorder}))
	require.NoError(t, store.Put(Item{PageID: "gone", Entity: EntityReorder}))

	require.NoError(t, store.Discard(EntityReorder, "gone"))
	removed, err := store.Cleanup(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestStore_NilIsClosed(t *testing.T) {
	var store *Store
	assert.Error(t, store.Put(Item{}))
	_, err := store.Size()
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
