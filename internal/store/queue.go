// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/models"
)

// queueKey is the fixed durable-store key holding the serialized queue.
// The value is carried over from the original localStorage schema so an
// upgraded client keeps its pending mutations.
const queueKey = "easysholi_offline_queue"

// MutationQueue is the durable FIFO of pending mutations. Entries are
// appended by the list session when a remote write fails or the client is
// offline, and removed by the synchronizer once the remote store has
// confirmed them.
//
// Persistence is write-through and best effort: a failed durable write is
// logged but never surfaced, so the entry still exists in memory for the
// current process.
type MutationQueue struct {
	kv     KVStore
	logger *logger.Logger

	mu      sync.Mutex
	entries []models.QueueEntry
}

func NewMutationQueue(kv KVStore, log *logger.Logger) *MutationQueue {
	return &MutationQueue{kv: kv, logger: log}
}

// Enqueue assigns the entry id (ULID: time-ordered with a random component)
// and creation timestamp, appends the entry, and persists the whole queue.
func (q *MutationQueue) Enqueue(ctx context.Context, action models.Action) models.QueueEntry {
	entry := models.QueueEntry{
		ID:        ulid.Make().String(),
		Type:      action.ActionType(),
		Action:    action,
		Timestamp: time.Now().UTC(),
	}

	q.mu.Lock()
	q.entries = append(q.entries, entry)
	q.persistLocked(ctx)
	q.mu.Unlock()

	q.logger.Debug().
		Str("func", "MutationQueue.Enqueue").
		Str("entry_id", entry.ID).
		Str("action", string(entry.Type)).
		Msg("mutation queued")

	return entry
}

// All returns a snapshot of the queue, oldest first.
func (q *MutationQueue) All() []models.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]models.QueueEntry(nil), q.entries...)
}

// Len returns the number of pending entries.
func (q *MutationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// Remove deletes the entry with the given id, if present, and persists.
func (q *MutationQueue) Remove(ctx context.Context, id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.entries[:0]
	for _, entry := range q.entries {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(q.entries) {
		return
	}

	q.entries = kept
	q.persistLocked(ctx)
}

// ReplaceAll atomically swaps the queue contents and persists. Used by the
// synchronizer to drop all succeeded entries in one step.
func (q *MutationQueue) ReplaceAll(ctx context.Context, entries []models.QueueEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append([]models.QueueEntry(nil), entries...)
	q.persistLocked(ctx)
}

// Load hydrates the queue from the durable store. Called once at startup
// before any other operation.
func (q *MutationQueue) Load(ctx context.Context) error {
	data, ok, err := q.kv.Get(ctx, queueKey)
	if err != nil {
		return fmt.Errorf("load mutation queue: %w", err)
	}
	if !ok {
		return nil
	}

	var entries []models.QueueEntry
	if err = json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decode mutation queue: %w", err)
	}

	q.mu.Lock()
	q.entries = entries
	q.mu.Unlock()

	q.logger.Debug().
		Str("func", "MutationQueue.Load").
		Int("pending", len(entries)).
		Msg("mutation queue loaded")

	return nil
}

// Clear wipes the queue in memory and in the durable store.
func (q *MutationQueue) Clear(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = nil
	if err := q.kv.Delete(ctx, queueKey); err != nil {
		q.logger.Err(err).
			Str("func", "MutationQueue.Clear").
			Msg("failed to clear persisted queue")
	}
}

func (q *MutationQueue) persistLocked(ctx context.Context) {
	data, err := json.Marshal(q.entries)
	if err != nil {
		q.logger.Err(err).
			Str("func", "MutationQueue.persistLocked").
			Msg("failed to encode queue")
		return
	}

	if err = q.kv.Put(ctx, queueKey, data); err != nil {
		q.logger.Err(err).
			Str("func", "MutationQueue.persistLocked").
			Int("pending", len(q.entries)).
			Msg("failed to persist queue, entries remain in memory")
	}
}
