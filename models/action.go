// SPDX-License-Identifier: Apache-2.0

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedAction is returned when a queue entry carries an action type
// this build does not recognise. With the sealed Action union below this can
// only happen while decoding entries written by an unknown future version.
var ErrUnsupportedAction = errors.New("unsupported action type")

// ActionType discriminates the queued mutation kinds on the wire.
type ActionType string

const (
	ActionCreateList ActionType = "CREATE_LIST"
	ActionUpdateList ActionType = "UPDATE_LIST"
	ActionAddItem    ActionType = "ADD_ITEM"
	ActionUpdateItem ActionType = "UPDATE_ITEM"
	ActionDeleteItem ActionType = "DELETE_ITEM"
)

// Action is the sealed union of queued mutation payloads. The unexported
// marker method keeps the set of implementations closed to this package, so
// a type switch over Action is exhaustive.
type Action interface {
	ActionType() ActionType
	isAction()
}

// CreateList records the creation of a new remote list with initial items.
type CreateList struct {
	ProfileID string `json:"profile_id"`
	Items     []Item `json:"items"`
}

// UpdateList records a full replacement of a list's item collection.
// ListID may be a local sentinel when the list has never been created
// remotely.
type UpdateList struct {
	ListID    string `json:"list_id"`
	ProfileID string `json:"profile_id"`
	Items     []Item `json:"items"`
}

// AddItem records the addition of a single item to the profile's list.
type AddItem struct {
	ProfileID string `json:"profile_id"`
	Item      Item   `json:"item"`
}

// UpdateItem records a partial update of a single item.
type UpdateItem struct {
	ProfileID string    `json:"profile_id"`
	ItemID    string    `json:"item_id"`
	Patch     ItemPatch `json:"patch"`
}

// DeleteItem records the removal of a single item.
type DeleteItem struct {
	ProfileID string `json:"profile_id"`
	ItemID    string `json:"item_id"`
}

func (CreateList) ActionType() ActionType { return ActionCreateList }
func (UpdateList) ActionType() ActionType { return ActionUpdateList }
func (AddItem) ActionType() ActionType    { return ActionAddItem }
func (UpdateItem) ActionType() ActionType { return ActionUpdateItem }
func (DeleteItem) ActionType() ActionType { return ActionDeleteItem }

func (CreateList) isAction() {}
func (UpdateList) isAction() {}
func (AddItem) isAction()    {}
func (UpdateItem) isAction() {}
func (DeleteItem) isAction() {}

// QueueEntry is one durable pending mutation. Entries are created once and
// never mutated in place; the synchronizer removes them only after the remote
// store has confirmed the mutation.
type QueueEntry struct {
	ID        string     `json:"id"`
	Type      ActionType `json:"type"`
	Action    Action     `json:"-"`
	Timestamp time.Time  `json:"timestamp"`

	// raw preserves the payload of an unrecognised action type, so a poison
	// entry written by a newer build survives load/persist cycles intact
	// instead of being dropped.
	raw json.RawMessage
}

// Supported reports whether the entry's action type was recognised when the
// entry was decoded. Unsupported entries stay queued and are reported as
// ErrUnsupportedAction by the synchronizer.
func (e QueueEntry) Supported() bool { return e.Action != nil }

// queueEntryEnvelope is the durable representation of a QueueEntry. The
// action payload travels as raw JSON next to its type discriminator.
type queueEntryEnvelope struct {
	ID        string          `json:"id"`
	Type      ActionType      `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// MarshalJSON encodes the entry as a {id, type, data, timestamp} envelope.
func (e QueueEntry) MarshalJSON() ([]byte, error) {
	data := e.raw
	if e.Action != nil {
		var err error
		data, err = json.Marshal(e.Action)
		if err != nil {
			return nil, fmt.Errorf("encode action payload: %w", err)
		}
	}
	return json.Marshal(queueEntryEnvelope{
		ID:        e.ID,
		Type:      e.Type,
		Data:      data,
		Timestamp: e.Timestamp,
	})
}

// UnmarshalJSON decodes the envelope and rebuilds the typed action payload.
// An envelope carrying an unrecognised type is preserved verbatim with a nil
// Action; malformed payloads of known types are an error.
func (e *QueueEntry) UnmarshalJSON(data []byte) error {
	var env queueEntryEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode queue entry envelope: %w", err)
	}

	e.ID = env.ID
	e.Type = env.Type
	e.Timestamp = env.Timestamp

	action, err := decodeAction(env.Type, env.Data)
	if errors.Is(err, ErrUnsupportedAction) {
		e.Action = nil
		e.raw = env.Data
		return nil
	}
	if err != nil {
		return err
	}

	e.Action = action
	e.raw = nil
	return nil
}

func decodeAction(t ActionType, data json.RawMessage) (Action, error) {
	var (
		action Action
		err    error
	)

	switch t {
	case ActionCreateList:
		var a CreateList
		err = json.Unmarshal(data, &a)
		action = a
	case ActionUpdateList:
		var a UpdateList
		err = json.Unmarshal(data, &a)
		action = a
	case ActionAddItem:
		var a AddItem
		err = json.Unmarshal(data, &a)
		action = a
	case ActionUpdateItem:
		var a UpdateItem
		err = json.Unmarshal(data, &a)
		action = a
	case ActionDeleteItem:
		var a DeleteItem
		err = json.Unmarshal(data, &a)
		action = a
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAction, t)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return action, nil
}
