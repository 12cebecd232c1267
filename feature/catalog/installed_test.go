package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpsertInstalled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.UpsertInstalled(ctx, 999, InstalledFields{Platform: "Steam"})
	assert.ErrorIs(t, err, ErrNotFound)

	entry, _, err := store.Upsert(ctx, "Steam", "620", EntryFields{Name: Ptr("Portal 2")})
	require.NoError(t, err)

	installedAt := time.Date(2023, 7, 1, 10, 0, 0, 0, time.UTC)
	rec, created, err := store.UpsertInstalled(ctx, entry.ID, InstalledFields{
		Platform:        "Steam",
		InstallLocation: "D:/Steam/steamapps/common/Portal 2",
		SizeBytes:       12 << 30,
		InstallDate:     &installedAt,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, rec.LastDetected.IsZero())

	again, created, err := store.UpsertInstalled(ctx, entry.ID, InstalledFields{
		Platform:        "Steam",
		InstallLocation: "E:/Portal 2",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, again.ID)

	records, err := store.ListInstalled(ctx, "Steam")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "E:/Portal 2", records[0].InstallLocation)
	require.NotNil(t, records[0].ReferenceEntry)
	assert.Equal(t, "Portal 2", records[0].ReferenceEntry.Name)

	version, err := store.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, entry.Version, version)

	require.NoError(t, store.DeleteInstalled(ctx, rec.ID))
	assert.ErrorIs(t, store.DeleteInstalled(ctx, rec.ID), ErrNotFound)
}
