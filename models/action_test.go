package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEntry_EnvelopeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		action Action
	}{
		{
			name:   "create list",
			action: CreateList{ProfileID: "p1", Items: []Item{{ID: "i1", Name: "Milk", Quantity: 2}}},
		},
		{
			name:   "update list",
			action: UpdateList{ListID: "l1", ProfileID: "p1", Items: []Item{{ID: "i1", Name: "Milk", Quantity: 1}}},
		},
		{
			name:   "add item",
			action: AddItem{ProfileID: "p1", Item: Item{ID: "i2", Name: "Eggs", Quantity: 6}},
		},
		{
			name:   "update item",
			action: UpdateItem{ProfileID: "p1", ItemID: "i2", Patch: ItemPatch{Quantity: intPtr(12)}},
		},
		{
			name:   "delete item",
			action: DeleteItem{ProfileID: "p1", ItemID: "i2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := QueueEntry{
				ID:        "01HXAMPLE",
				Type:      tt.action.ActionType(),
				Action:    tt.action,
				Timestamp: now,
			}

			data, err := json.Marshal(entry)
			require.NoError(t, err)

			var got QueueEntry
			require.NoError(t, json.Unmarshal(data, &got))

			assert.Equal(t, entry.ID, got.ID)
			assert.Equal(t, entry.Type, got.Type)
			assert.True(t, got.Timestamp.Equal(now))
			assert.Equal(t, tt.action, got.Action)
			assert.True(t, got.Supported())
		})
	}
}

func TestQueueEntry_UnknownTypePreserved(t *testing.T) {
	raw := []byte(`{"id":"e1","type":"RENAME_LIST","data":{"list_id":"l1","name":"new"},"timestamp":"2026-03-14T12:00:00Z"}`)

	var entry QueueEntry
	require.NoError(t, json.Unmarshal(raw, &entry))

	assert.False(t, entry.Supported())
	assert.Equal(t, ActionType("RENAME_LIST"), entry.Type)

	// A poison entry must survive a persist/load round trip unchanged.
	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var again QueueEntry
	require.NoError(t, json.Unmarshal(data, &again))
	assert.False(t, again.Supported())
	assert.Equal(t, entry.ID, again.ID)
	assert.Equal(t, entry.Type, again.Type)
}

func TestQueueEntry_MalformedKnownPayload(t *testing.T) {
	raw := []byte(`{"id":"e1","type":"ADD_ITEM","data":"not an object","timestamp":"2026-03-14T12:00:00Z"}`)

	var entry QueueEntry
	require.Error(t, json.Unmarshal(raw, &entry))
}

func TestDecodeAction_Unsupported(t *testing.T) {
	_, err := decodeAction("SHRED_LIST", []byte(`{}`))
	require.ErrorIs(t, err, ErrUnsupportedAction)
}

func TestLocalListID_RoundTrip(t *testing.T) {
	id := LocalListID("p42")
	assert.Equal(t, "offline_p42", id)
	assert.True(t, IsLocalID(id))

	profileID, ok := ProfileFromLocalID(id)
	require.True(t, ok)
	assert.Equal(t, "p42", profileID)

	_, ok = ProfileFromLocalID("remote-77")
	assert.False(t, ok)
}

func TestNewItem_ClampsQuantity(t *testing.T) {
	item := NewItem("Milk", 0, "dairy")

	assert.Equal(t, 1, item.Quantity)
	assert.NotEmpty(t, item.ID)
	require.NotNil(t, item.CreatedAt)
	require.NotNil(t, item.UpdatedAt)
}

func intPtr(v int) *int { return &v }
