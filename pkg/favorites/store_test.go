package favorites

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/roamly/roamly/internal/kvstore"
	"github.com/roamly/roamly/pkg/place"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var bali = place.Place{Id: 1, Name: "Bali", Category: "beach", Image: "/images/bali.jpg", MapUrl: "https://maps.example/bali"}
var kyoto = place.Place{Id: 3, Name: "Kyoto", Category: "culture", Image: "/images/kyoto.jpg", MapUrl: "https://maps.example/kyoto"}

func persisted(t *testing.T, storage kvstore.Storage) []place.Place {
	t.Helper()
	raw, found, err := storage.GetItem(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, found)
	var places []place.Place
	require.NoError(t, json.Unmarshal([]byte(raw), &places))
	return places
}

func TestStore_Load(t *testing.T) {
	t.Run("starts empty without persisted state", func(t *testing.T) {
		store := NewStore(ctx, kvstore.NewMemoryStorage())

		assert.Zero(t, store.Count())
		assert.Empty(t, store.List())
	})

	t.Run("restores persisted favorites in order", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		require.NoError(t, kvstore.SetJSON(ctx, storage, StorageKey, []place.Place{kyoto, bali}))

		store := NewStore(ctx, storage)

		assert.Equal(t, []place.Place{kyoto, bali}, store.List())
		assert.True(t, store.IsFavorite(bali.Id))
	})

	t.Run("malformed json falls back to empty", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		require.NoError(t, storage.SetItem(ctx, StorageKey, `[{"id":1,`))

		store := NewStore(ctx, storage)

		assert.Zero(t, store.Count())
	})

	t.Run("invalid places fall back to empty", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		require.NoError(t, storage.SetItem(ctx, StorageKey, `[{"id":0,"name":""}]`))

		store := NewStore(ctx, storage)

		assert.Zero(t, store.Count())
	})

	t.Run("duplicate ids collapse to the first", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		require.NoError(t, kvstore.SetJSON(ctx, storage, StorageKey, []place.Place{bali, kyoto, bali}))

		store := NewStore(ctx, storage)

		assert.Equal(t, 2, store.Count())
	})

	t.Run("unavailable storage starts empty", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		storage.SetUnavailable(true)

		store := NewStore(ctx, storage)

		assert.Zero(t, store.Count())
		assert.ErrorIs(t, store.Reload(ctx), kvstore.ErrUnavailable)
	})
}

func TestStore_Toggle(t *testing.T) {
	t.Run("adds and persists", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		store := NewStore(ctx, storage)

		favorite, err := store.Toggle(ctx, bali)

		require.NoError(t, err)
		assert.True(t, favorite)
		assert.True(t, store.IsFavorite(bali.Id))
		assert.Equal(t, 1, store.Count())
		assert.Equal(t, []place.Place{bali}, persisted(t, storage))
	})

	t.Run("toggling twice restores the original set", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		store := NewStore(ctx, storage)
		_, err := store.Toggle(ctx, kyoto)
		require.NoError(t, err)
		before := store.List()

		_, err = store.Toggle(ctx, bali)
		require.NoError(t, err)
		favorite, err := store.Toggle(ctx, bali)
		require.NoError(t, err)

		assert.False(t, favorite)
		assert.False(t, store.IsFavorite(bali.Id))
		assert.Equal(t, before, store.List())
		assert.Equal(t, before, persisted(t, storage))
	})

	t.Run("removing the last favorite persists an empty list", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		store := NewStore(ctx, storage)
		_, _ = store.Toggle(ctx, bali)

		_, err := store.Toggle(ctx, bali)

		require.NoError(t, err)
		raw, _, err := storage.GetItem(ctx, StorageKey)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, raw)
	})

	t.Run("failed write leaves the set unchanged", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		store := NewStore(ctx, storage)
		storage.SetUnavailable(true)

		favorite, err := store.Toggle(ctx, bali)

		assert.ErrorIs(t, err, kvstore.ErrUnavailable)
		assert.False(t, favorite)
		assert.False(t, store.IsFavorite(bali.Id))
	})

	t.Run("reload picks up favorites written elsewhere", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		store := NewStore(ctx, storage)
		other := NewStore(ctx, storage.Sibling())
		_, err := other.Toggle(ctx, kyoto)
		require.NoError(t, err)

		require.NoError(t, store.Reload(ctx))

		assert.True(t, store.IsFavorite(kyoto.Id))
	})
}
