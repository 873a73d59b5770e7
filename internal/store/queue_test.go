package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/models"
)

func newTestQueue(t *testing.T) (*MutationQueue, *MemoryKV) {
	t.Helper()

	kv := NewMemoryKV()
	log := logger.Nop()

	return NewMutationQueue(kv, log), kv
}

func TestMutationQueue_EnqueuePreservesOrder(t *testing.T) {
	ctx := context.Background()
	queue, _ := newTestQueue(t)

	first := queue.Enqueue(ctx, models.AddItem{ProfileID: "p1", Item: models.NewItem("milk", 1, "")})
	second := queue.Enqueue(ctx, models.AddItem{ProfileID: "p1", Item: models.NewItem("eggs", 2, "")})
	third := queue.Enqueue(ctx, models.DeleteItem{ProfileID: "p1", ItemID: "abc"})

	entries := queue.All()
	require.Len(t, entries, 3)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, third.ID, entries[2].ID)

	// ULIDs sort lexicographically in creation order
	assert.Less(t, entries[0].ID, entries[1].ID)
	assert.Less(t, entries[1].ID, entries[2].ID)
}

func TestMutationQueue_EnqueueStampsEntry(t *testing.T) {
	ctx := context.Background()
	queue, _ := newTestQueue(t)

	before := time.Now().UTC()
	entry := queue.Enqueue(ctx, models.AddItem{ProfileID: "p1", Item: models.NewItem("milk", 1, "")})
	after := time.Now().UTC()

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.ActionAddItem, entry.Type)
	assert.True(t, entry.Supported())
	assert.False(t, entry.Timestamp.Before(before))
	assert.False(t, entry.Timestamp.After(after))
}

func TestMutationQueue_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	log := logger.Nop()

	queue := NewMutationQueue(kv, log)
	queued := queue.Enqueue(ctx, models.UpdateList{
		ListID:    "list-1",
		ProfileID: "p1",
		Items:     []models.Item{models.NewItem("milk", 2, "")},
	})

	// a fresh queue over the same store sees the pending entry
	restarted := NewMutationQueue(kv, log)
	require.NoError(t, restarted.Load(ctx))

	entries := restarted.All()
	require.Len(t, entries, 1)
	assert.Equal(t, queued.ID, entries[0].ID)
	assert.Equal(t, models.ActionUpdateList, entries[0].Type)

	update, ok := entries[0].Action.(models.UpdateList)
	require.True(t, ok)
	assert.Equal(t, "list-1", update.ListID)
	require.Len(t, update.Items, 1)
	assert.Equal(t, "milk", update.Items[0].Name)
}

func TestMutationQueue_EnqueueSurvivesPutFailure(t *testing.T) {
	ctx := context.Background()
	queue, kv := newTestQueue(t)
	kv.FailPuts = true

	entry := queue.Enqueue(ctx, models.AddItem{ProfileID: "p1", Item: models.NewItem("milk", 1, "")})

	// the entry is retained in memory even though persistence failed
	entries := queue.All()
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestMutationQueue_Remove(t *testing.T) {
	ctx := context.Background()
	queue, _ := newTestQueue(t)

	first := queue.Enqueue(ctx, models.AddItem{ProfileID: "p1", Item: models.NewItem("milk", 1, "")})
	second := queue.Enqueue(ctx, models.AddItem{ProfileID: "p1", Item: models.NewItem("eggs", 1, "")})

	queue.Remove(ctx, first.ID)

	entries := queue.All()
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].ID)

	queue.Remove(ctx, "unknown-id")
	assert.Equal(t, 1, queue.Len())
}

func TestMutationQueue_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	queue, kv := newTestQueue(t)

	queue.Enqueue(ctx, models.AddItem{ProfileID: "p1", Item: models.NewItem("milk", 1, "")})
	failed := queue.Enqueue(ctx, models.DeleteItem{ProfileID: "p1", ItemID: "abc"})

	queue.ReplaceAll(ctx, []models.QueueEntry{failed})

	entries := queue.All()
	require.Len(t, entries, 1)
	assert.Equal(t, failed.ID, entries[0].ID)

	// replacement reached the durable store too
	restarted := NewMutationQueue(kv, logger.Nop())
	require.NoError(t, restarted.Load(ctx))
	assert.Equal(t, 1, restarted.Len())
}

func TestMutationQueue_Clear(t *testing.T) {
	ctx := context.Background()
	queue, kv := newTestQueue(t)

	queue.Enqueue(ctx, models.AddItem{ProfileID: "p1", Item: models.NewItem("milk", 1, "")})
	queue.Clear(ctx)

	assert.Zero(t, queue.Len())

	_, ok, err := kv.Get(ctx, queueKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutationQueue_LoadKeepsUnknownActionTypes(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	raw := []byte(`[
		{"id":"01HV0000000000000000000000","type":"RENAME_LIST","data":{"newName":"weekend"},"timestamp":"2026-08-30T10:00:00Z"},
		{"id":"01HV0000000000000000000001","type":"DELETE_ITEM","data":{"profile_id":"p1","item_id":"abc"},"timestamp":"2026-08-30T10:01:00Z"}
	]`)
	require.NoError(t, kv.Put(ctx, queueKey, raw))

	queue := NewMutationQueue(kv, logger.Nop())
	require.NoError(t, queue.Load(ctx))

	entries := queue.All()
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Supported())
	assert.True(t, entries[1].Supported())

	// the unrecognized entry round-trips with its payload intact
	queue.ReplaceAll(ctx, entries)
	persisted, ok, err := kv.Get(ctx, queueKey)
	require.NoError(t, err)
	require.True(t, ok)

	var decoded []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(persisted, &decoded))
	require.Len(t, decoded, 2)
	assert.JSONEq(t, `"RENAME_LIST"`, string(decoded[0]["type"]))
	assert.JSONEq(t, `{"newName":"weekend"}`, string(decoded[0]["data"]))
}

func TestMutationQueue_LoadEmptyStore(t *testing.T) {
	queue, _ := newTestQueue(t)

	require.NoError(t, queue.Load(context.Background()))
	assert.Zero(t, queue.Len())
}

func TestMutationQueue_LoadCorruptPayload(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ctx, queueKey, []byte(`{"not":"an array"`)))

	queue := NewMutationQueue(kv, logger.Nop())
	assert.Error(t, queue.Load(ctx))
}
