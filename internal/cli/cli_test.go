package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roamly/roamly/internal/kvstore"
	"github.com/roamly/roamly/pkg/place"
	"github.com/roamly/roamly/pkg/trip_plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against file storage in dir and returns its output.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ROAMLY_STORAGE_DRIVER", "file")
	t.Setenv("ROAMLY_STORAGE_DIR", dir)

	var out bytes.Buffer
	cmd := NewRootCommand(&Options{})
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--env-file", "",
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func storePlans(t *testing.T, dir string, plans ...trip_plan.SavedTripPlan) {
	t.Helper()
	storage, err := kvstore.NewFileStorage(dir)
	require.NoError(t, err)
	repo := trip_plan.NewRepository(storage)
	for _, plan := range plans {
		_, err := repo.Store(context.Background(), plan)
		require.NoError(t, err)
	}
}

func TestStorageProbe(t *testing.T) {
	out, err := run(t, t.TempDir(), "storage", "probe")

	require.NoError(t, err)
	assert.Contains(t, out, "file storage is available")
}

func TestPlansList(t *testing.T) {
	// given
	dir := t.TempDir()
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	storePlans(t, dir,
		trip_plan.SavedTripPlan{Id: 1, Name: "Older", Places: []place.Place{{Id: 1, Name: "Bali"}}, CreatedAt: created},
		trip_plan.SavedTripPlan{Id: 2, Name: "Newer", StartDate: "2025-06-01", EndDate: "2025-06-03", CreatedAt: created.Add(time.Hour)},
	)

	// when
	out, err := run(t, dir, "plans", "list")

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "2025-06-01..2025-06-03")
	assert.Less(t, bytes.Index([]byte(out), []byte("Newer")), bytes.Index([]byte(out), []byte("Older")))
}

func TestPlansList_LeavesStorageUntouched(t *testing.T) {
	dir := t.TempDir()
	storePlans(t, dir, trip_plan.SavedTripPlan{Id: 1, Name: "Only", CreatedAt: time.Now()})

	_, err := run(t, dir, "plans", "list")

	require.NoError(t, err)
	storage, err := kvstore.NewFileStorage(dir)
	require.NoError(t, err)
	keys, err := storage.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{trip_plan.StorageKey(1)}, keys)
}

func TestPlansDelete(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		dir := t.TempDir()
		storePlans(t, dir, trip_plan.SavedTripPlan{Id: 5, Name: "Keep", CreatedAt: time.Now()})

		_, err := run(t, dir, "plans", "delete", "5")

		assert.ErrorIs(t, err, trip_plan.ErrDeletionNotConfirmed)
	})

	t.Run("deletes with confirmation", func(t *testing.T) {
		dir := t.TempDir()
		storePlans(t, dir,
			trip_plan.SavedTripPlan{Id: 5, Name: "Drop", CreatedAt: time.Now()},
			trip_plan.SavedTripPlan{Id: 6, Name: "Keep", CreatedAt: time.Now()},
		)

		out, err := run(t, dir, "plans", "delete", "5", "--confirm")

		require.NoError(t, err)
		assert.Contains(t, out, "deleted trip plan 5")
		storage, err := kvstore.NewFileStorage(dir)
		require.NoError(t, err)
		plans, err := trip_plan.NewRepository(storage).List(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, int64(6), plans[0].Id)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		_, err := run(t, t.TempDir(), "plans", "delete", "abc", "--confirm")

		assert.ErrorContains(t, err, "invalid plan id")
	})
}

func TestMigrate_NothingToDoForFiles(t *testing.T) {
	_, err := run(t, t.TempDir(), "migrate")

	assert.NoError(t, err)
}
