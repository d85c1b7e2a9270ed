package trip_plan

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/roamly/roamly/internal/kvstore"
	"github.com/roamly/roamly/internal/test_utils"
	"github.com/roamly/roamly/pkg/place"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var (
	bali = place.Place{Id: 1, Name: "Bali", Category: "beach"}
	ubud = place.Place{Id: 2, Name: "Ubud Monkey Forest", Category: "nature"}
)

var t0 = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func planAt(id int64, createdAt time.Time) SavedTripPlan {
	return SavedTripPlan{Id: id, Name: "Plan", Places: []place.Place{bali}, Companions: []string{}, CreatedAt: createdAt}
}

func TestRepository(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		testRepository(t, func() kvstore.Storage { return kvstore.NewMemoryStorage() })
	})
	t.Run("sqlite", func(t *testing.T) {
		testRepository(t, func() kvstore.Storage { return kvstore.NewSQLiteStorage(test_utils.SetupTestDB(t)) })
	})
}

func testRepository(t *testing.T, newStorage func() kvstore.Storage) {
	t.Run("lists plans newest first", func(t *testing.T) {
		// given
		repo := NewRepository(newStorage())
		for _, p := range []SavedTripPlan{
			planAt(100, t0),
			planAt(300, t0.Add(2*time.Hour)),
			planAt(200, t0.Add(time.Hour)),
		} {
			_, err := repo.Store(ctx, p)
			require.NoError(t, err)
		}

		// when
		plans, err := repo.List(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, plans, 3)
		assert.Equal(t, []int64{300, 200, 100}, []int64{plans[0].Id, plans[1].Id, plans[2].Id})
	})

	t.Run("equal timestamps are ordered by id", func(t *testing.T) {
		repo := NewRepository(newStorage())
		_, err := repo.Store(ctx, planAt(10, t0))
		require.NoError(t, err)
		_, err = repo.Store(ctx, planAt(11, t0))
		require.NoError(t, err)

		plans, err := repo.List(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(11), plans[0].Id)
	})

	t.Run("skips unreadable and mismatched entries", func(t *testing.T) {
		// given
		storage := newStorage()
		repo := NewRepository(storage)
		_, err := repo.Store(ctx, planAt(100, t0))
		require.NoError(t, err)
		require.NoError(t, storage.SetItem(ctx, "tripPlan_200", "{broken"))
		require.NoError(t, kvstore.SetJSON(ctx, storage, "tripPlan_300", planAt(999, t0)))
		require.NoError(t, storage.SetItem(ctx, "favorites", "[]"))

		// when
		plans, err := repo.List(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, int64(100), plans[0].Id)
	})

	t.Run("store moves a taken id forward", func(t *testing.T) {
		repo := NewRepository(newStorage())
		first, err := repo.Store(ctx, planAt(500, t0))
		require.NoError(t, err)

		second, err := repo.Store(ctx, planAt(500, t0))

		require.NoError(t, err)
		assert.Equal(t, int64(500), first.Id)
		assert.Equal(t, int64(501), second.Id)
		stored, err := repo.Get(ctx, 501)
		require.NoError(t, err)
		assert.Equal(t, int64(501), stored.Id)
	})

	t.Run("get round trips the plan", func(t *testing.T) {
		repo := NewRepository(newStorage())
		plan := SavedTripPlan{
			Id:         42,
			Name:       "Bali Trip",
			StartDate:  "2025-06-01",
			EndDate:    "2025-06-10",
			Places:     []place.Place{bali, ubud},
			Companions: []string{"Ana"},
			Budget:     "2000",
			Notes:      "bring sunscreen",
			CreatedAt:  t0,
		}
		_, err := repo.Store(ctx, plan)
		require.NoError(t, err)

		stored, err := repo.Get(ctx, 42)

		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(plan, stored))
	})

	t.Run("get of an unknown plan", func(t *testing.T) {
		repo := NewRepository(newStorage())

		_, err := repo.Get(ctx, 7)

		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("delete removes only the given plan", func(t *testing.T) {
		// given
		repo := NewRepository(newStorage())
		for _, id := range []int64{1, 2, 3} {
			_, err := repo.Store(ctx, planAt(id, t0.Add(time.Duration(id)*time.Minute)))
			require.NoError(t, err)
		}
		before, err := repo.Get(ctx, 3)
		require.NoError(t, err)

		// when
		deleted, err := repo.Delete(ctx, 2)

		// then
		require.NoError(t, err)
		assert.True(t, deleted)
		plans, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, int64(3), plans[0].Id)
		assert.Equal(t, int64(1), plans[1].Id)
		assert.Equal(t, before.Name, plans[0].Name)
		assert.True(t, before.CreatedAt.Equal(plans[0].CreatedAt))

		deleted, err = repo.Delete(ctx, 2)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("unavailable storage", func(t *testing.T) {
		storage := kvstore.NewMemoryStorage()
		storage.SetUnavailable(true)
		repo := NewRepository(storage)

		_, err := repo.List(ctx)

		assert.ErrorIs(t, err, kvstore.ErrUnavailable)
	})
}
