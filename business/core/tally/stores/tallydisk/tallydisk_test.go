package tallydisk_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardanlabs/ballot/business/core/tally"
	"github.com/ardanlabs/ballot/business/core/tally/stores/tallydisk"
	"github.com/stretchr/testify/require"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Store(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "elections")

	store, err := tallydisk.NewStore(dir)
	require.NoError(t, err)

	now := time.Date(2023, time.March, 1, 10, 0, 0, 0, time.UTC)
	e := tally.Election{
		ID:          "e1",
		Title:       "Class Rep",
		Candidates:  []string{"a", "b"},
		Voters:      []string{"a", "b", "c"},
		Status:      tally.StatusOngoing,
		Chain:       `[{"previous":"0000000000000000"}]`,
		DateCreated: now,
		DateUpdated: now,
	}

	t.Log("Given the need to store elections on disk.")
	{
		require.NoError(t, store.Create(ctx, e))
		require.FileExists(t, filepath.Join(dir, "e1.json"))
		require.Error(t, store.Create(ctx, e), "Should not create the same election twice.")
		t.Logf("\t%s\tShould be able to create an election file.", success)

		got, err := store.QueryByID(ctx, e.ID)
		require.NoError(t, err)
		require.Equal(t, e, got)
		t.Logf("\t%s\tShould read back the same election.", success)

		got.Status = tally.StatusEnded
		require.NoError(t, store.Update(ctx, got))
		require.ErrorIs(t, store.Update(ctx, got), tally.ErrVersionConflict)

		got, err = store.QueryByID(ctx, e.ID)
		require.NoError(t, err)
		require.Equal(t, tally.StatusEnded, got.Status)
		require.Equal(t, 1, got.Version)
		t.Logf("\t%s\tShould apply version checked updates.", success)

		reopened, err := tallydisk.NewStore(dir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0600))

		all, err := reopened.Query(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		require.Equal(t, got, all[0])
		t.Logf("\t%s\tShould see the elections after reopening the store.", success)

		_, err = store.QueryByID(ctx, "missing")
		require.ErrorIs(t, err, tally.ErrNotFound)
		t.Logf("\t%s\tShould get not found for an unknown election.", success)
	}
}
