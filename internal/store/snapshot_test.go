package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/models"
)

func TestSnapshotStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	snapshots := NewSnapshotStore(NewMemoryKV(), logger.Nop())

	_, ok := snapshots.Get("p1")
	assert.False(t, ok)

	items := []models.Item{models.NewItem("milk", 2, ""), models.NewItem("eggs", 1, "")}

	before := time.Now().UTC()
	record := snapshots.Save(ctx, "p1", items)

	assert.False(t, record.LastModified.Before(before))

	got, ok := snapshots.Get("p1")
	require.True(t, ok)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "milk", got.Items[0].Name)
	assert.Equal(t, record.LastModified, got.LastModified)
}

func TestSnapshotStore_ProfilesAreIndependent(t *testing.T) {
	ctx := context.Background()
	snapshots := NewSnapshotStore(NewMemoryKV(), logger.Nop())

	snapshots.Save(ctx, "p1", []models.Item{models.NewItem("milk", 1, "")})
	snapshots.Save(ctx, "p2", []models.Item{models.NewItem("bread", 1, "")})

	snapshots.Delete(ctx, "p1")

	_, ok := snapshots.Get("p1")
	assert.False(t, ok)

	got, ok := snapshots.Get("p2")
	require.True(t, ok)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "bread", got.Items[0].Name)
}

func TestSnapshotStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	snapshots := NewSnapshotStore(NewMemoryKV(), logger.Nop())

	snapshots.Save(ctx, "p1", []models.Item{models.NewItem("milk", 2, "")})

	got, ok := snapshots.Get("p1")
	require.True(t, ok)
	got.Items[0].Name = "mutated"

	again, ok := snapshots.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "milk", again.Items[0].Name)
}

func TestSnapshotStore_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	snapshots := NewSnapshotStore(kv, logger.Nop())
	saved := snapshots.Save(ctx, "p1", []models.Item{models.NewItem("bread", 1, "tag-1")})

	restarted := NewSnapshotStore(kv, logger.Nop())
	require.NoError(t, restarted.Load(ctx))

	got, ok := restarted.Get("p1")
	require.True(t, ok)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "bread", got.Items[0].Name)
	assert.Equal(t, "tag-1", got.Items[0].TagID)
	assert.True(t, got.LastModified.Equal(saved.LastModified))
}

func TestSnapshotStore_SaveSurvivesPutFailure(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	kv.FailPuts = true

	snapshots := NewSnapshotStore(kv, logger.Nop())
	snapshots.Save(ctx, "p1", []models.Item{models.NewItem("milk", 1, "")})

	got, ok := snapshots.Get("p1")
	require.True(t, ok)
	assert.Len(t, got.Items, 1)
}

func TestSnapshotStore_Clear(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	snapshots := NewSnapshotStore(kv, logger.Nop())
	snapshots.Save(ctx, "p1", []models.Item{models.NewItem("milk", 1, "")})
	snapshots.Clear(ctx)

	_, ok := snapshots.Get("p1")
	assert.False(t, ok)

	_, found, err := kv.Get(ctx, snapshotKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotStore_LoadEmptyStore(t *testing.T) {
	snapshots := NewSnapshotStore(NewMemoryKV(), logger.Nop())

	require.NoError(t, snapshots.Load(context.Background()))

	_, ok := snapshots.Get("p1")
	assert.False(t, ok)
}

func TestSnapshotStore_LoadCorruptPayload(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ctx, snapshotKey, []byte(`not json`)))

	snapshots := NewSnapshotStore(kv, logger.Nop())
	assert.Error(t, snapshots.Load(ctx))
}
