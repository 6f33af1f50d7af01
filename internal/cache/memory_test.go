package cache

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryStore(t *testing.T, maxItemSize int) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(1<<20, maxItemSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "cache://guide/index.html", PositiveKey("guide/index.html").String())
	assert.Equal(t, "noncache://guide/index.html", NegativeKey("guide/index.html").String())
}

func TestMemoryStoreAddReplace(t *testing.T) {
	ctx := context.Background()
	store := newTestMemoryStore(t, 0)
	key := PositiveKey("index.html")

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	replaced, err := store.Replace(ctx, key, []byte("v0"))
	require.NoError(t, err)
	assert.False(t, replaced, "replace must not create entries")

	added, err := store.Add(ctx, key, []byte("v1"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Add(ctx, key, []byte("v2"))
	require.NoError(t, err)
	assert.False(t, added, "add must not overwrite")

	got, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(got))

	replaced, err = store.Replace(ctx, key, []byte("v3"))
	require.NoError(t, err)
	assert.True(t, replaced)

	got, _, _ = store.Get(ctx, key)
	assert.Equal(t, "v3", string(got))
}

func TestMemoryStoreSeparatesTiers(t *testing.T) {
	ctx := context.Background()
	store := newTestMemoryStore(t, 0)

	_, err := store.Add(ctx, NegativeKey("missing.html"), NegativeSentinel)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, PositiveKey("missing.html"))
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.Get(ctx, NegativeKey("missing.html"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreRejectsLargeValues(t *testing.T) {
	store := newTestMemoryStore(t, 8)
	_, err := store.Add(context.Background(), PositiveKey("big.bin"), bytes.Repeat([]byte("x"), 9))
	assert.ErrorIs(t, err, ErrValueTooLarge)

	_, err = store.Replace(context.Background(), PositiveKey("big.bin"), bytes.Repeat([]byte("x"), 9))
	assert.ErrorIs(t, err, ErrValueTooLarge)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := newTestMemoryStore(t, 0)
	value := []byte("original")
	_, err := store.Add(ctx, PositiveKey("a.txt"), value)
	require.NoError(t, err)
	value[0] = 'X'

	got, ok, err := store.Get(ctx, PositiveKey("a.txt"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "original", string(got))
}

func TestNewMemoryStoreRequiresCost(t *testing.T) {
	_, err := NewMemoryStore(0, 0)
	assert.Error(t, err)
}
