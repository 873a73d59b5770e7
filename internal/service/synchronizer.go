// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/easysholi/listsync/internal/adapter"
	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/internal/store"
	"github.com/easysholi/listsync/models"
)

// Synchronizer drains the mutation queue against the remote store. Entries
// are replayed in enqueue order; an entry leaves the queue only once the
// remote store has confirmed it (or its target is gone and the entry is
// inapplicable). Failed entries stay queued, in their original relative
// order, for the next cycle.
type Synchronizer struct {
	queue     *store.MutationQueue
	snapshots *store.SnapshotStore
	remote    adapter.RemoteStore
	monitor   *Monitor
	logger    *logger.Logger

	mu           sync.Mutex
	syncing      bool
	lastSyncTime time.Time
	syncErrors   []models.SyncError
}

// NewSynchronizer wires the synchronizer to the connectivity monitor: every
// offline-to-online transition triggers a drain.
func NewSynchronizer(
	queue *store.MutationQueue,
	snapshots *store.SnapshotStore,
	remote adapter.RemoteStore,
	monitor *Monitor,
	log *logger.Logger,
) *Synchronizer {
	s := &Synchronizer{
		queue:     queue,
		snapshots: snapshots,
		remote:    remote,
		monitor:   monitor,
		logger:    log,
	}

	monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		if _, err := s.Drain(context.Background()); err != nil {
			s.logger.Err(err).
				Str("func", "NewSynchronizer").
				Msg("drain on reconnect rejected")
		}
	})

	return s
}

// Drain replays the queued mutations present at call time. Entries enqueued
// while the drain runs wait for the next cycle. Offline or an empty queue is
// a clean no-op; a drain while one is already running returns
// ErrAlreadySyncing and leaves the queue untouched.
func (s *Synchronizer) Drain(ctx context.Context) (models.SyncReport, error) {
	report := models.SyncReport{StartedAt: time.Now().UTC()}

	if !s.monitor.Online() {
		report.FinishedAt = report.StartedAt
		return report, nil
	}

	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return report, ErrAlreadySyncing
	}
	s.syncing = true
	s.syncErrors = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.lastSyncTime = time.Now().UTC()
		s.mu.Unlock()
	}()

	entries := s.queue.All()
	if len(entries) == 0 {
		report.FinishedAt = time.Now().UTC()
		return report, nil
	}

	s.logger.Info().
		Str("func", "Synchronizer.Drain").
		Int("pending", len(entries)).
		Msg("drain started")

	for _, entry := range entries {
		if err := s.apply(ctx, entry); err != nil {
			report.Failed++
			syncErr := models.SyncError{
				Action:    entry.Type,
				Error:     err.Error(),
				Timestamp: time.Now().UTC(),
			}
			report.Errors = append(report.Errors, syncErr)

			s.mu.Lock()
			s.syncErrors = append(s.syncErrors, syncErr)
			s.mu.Unlock()

			s.logger.Err(err).
				Str("func", "Synchronizer.Drain").
				Str("entry_id", entry.ID).
				Str("action", string(entry.Type)).
				Msg("entry failed, kept for retry")
			continue
		}

		s.queue.Remove(ctx, entry.ID)
		report.Succeeded++
	}

	report.FinishedAt = time.Now().UTC()

	s.logger.Info().
		Str("func", "Synchronizer.Drain").
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("drain finished")

	return report, nil
}

// apply dispatches one queue entry against the remote store. A nil error
// means the entry is settled and leaves the queue, including the benign
// already-applied and target-gone cases.
func (s *Synchronizer) apply(ctx context.Context, entry models.QueueEntry) error {
	if !entry.Supported() {
		return fmt.Errorf("%w: %q", models.ErrUnsupportedAction, entry.Type)
	}

	switch action := entry.Action.(type) {
	case models.CreateList:
		list, err := s.remote.CreateList(ctx, action.ProfileID, action.Items)
		if err != nil {
			return err
		}
		s.snapshots.Save(ctx, action.ProfileID, list.Items)
		return nil

	case models.UpdateList:
		return s.applyUpdateList(ctx, action)

	case models.AddItem:
		return s.applyAddItem(ctx, action)

	case models.UpdateItem:
		return s.applyUpdateItem(ctx, action)

	case models.DeleteItem:
		return s.applyDeleteItem(ctx, action)

	default:
		return fmt.Errorf("%w: %q", models.ErrUnsupportedAction, entry.Type)
	}
}

// applyUpdateList replaces a list's items remotely, merging with the live
// remote items first so a second writer's changes during the offline window
// survive. A placeholder local list id resolves to whatever list the
// profile actually has remotely, created on the spot when there is none.
func (s *Synchronizer) applyUpdateList(ctx context.Context, action models.UpdateList) error {
	profileID := action.ProfileID
	if fromID, ok := models.ProfileFromLocalID(action.ListID); ok && profileID == "" {
		profileID = fromID
	}

	lists, err := s.remote.FetchLists(ctx, profileID)
	if err != nil {
		return err
	}

	var target *models.List
	if models.IsLocalID(action.ListID) {
		if len(lists) > 0 {
			target = &lists[0]
		}
	} else {
		for i := range lists {
			if lists[i].ID == action.ListID {
				target = &lists[i]
				break
			}
		}
	}

	if target == nil {
		created, err := s.remote.CreateList(ctx, profileID, action.Items)
		if err != nil {
			return err
		}
		s.snapshots.Save(ctx, profileID, created.Items)
		return nil
	}

	merged := MergeItems(target.Items, action.Items)
	updated, err := s.remote.UpdateList(ctx, target.ID, merged)
	if err != nil {
		return err
	}
	s.snapshots.Save(ctx, profileID, updated.Items)

	return nil
}

func (s *Synchronizer) applyAddItem(ctx context.Context, action models.AddItem) error {
	lists, err := s.remote.FetchLists(ctx, action.ProfileID)
	if err != nil {
		return err
	}

	if len(lists) == 0 {
		created, err := s.remote.CreateList(ctx, action.ProfileID, []models.Item{action.Item})
		if err != nil {
			return err
		}
		s.snapshots.Save(ctx, action.ProfileID, created.Items)
		return nil
	}

	list := lists[0]
	for _, existing := range list.Items {
		if existing.ID == action.Item.ID {
			// already applied by a previous partial drain
			return nil
		}
	}

	updated, err := s.remote.UpdateList(ctx, list.ID, append(list.Items, action.Item))
	if err != nil {
		return err
	}
	s.snapshots.Save(ctx, action.ProfileID, updated.Items)

	return nil
}

// applyUpdateItem patches one item in place. The patch is skipped when the
// remote copy is already newer; a missing timestamp on either side lets the
// local patch win. A vanished target settles the entry without a write.
func (s *Synchronizer) applyUpdateItem(ctx context.Context, action models.UpdateItem) error {
	lists, err := s.remote.FetchLists(ctx, action.ProfileID)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		s.logInapplicable("UpdateItem", action.ItemID)
		return nil
	}

	list := lists[0]
	idx := -1
	for i, existing := range list.Items {
		if existing.ID == action.ItemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.logInapplicable("UpdateItem", action.ItemID)
		return nil
	}

	remoteItem := list.Items[idx]
	if remoteItem.UpdatedAt != nil && action.Patch.UpdatedAt != nil &&
		action.Patch.UpdatedAt.Before(*remoteItem.UpdatedAt) {
		// remote already authoritative
		return nil
	}

	list.Items[idx] = ApplyItemPatch(remoteItem, action.Patch)

	updated, err := s.remote.UpdateList(ctx, list.ID, list.Items)
	if err != nil {
		return err
	}
	s.snapshots.Save(ctx, action.ProfileID, updated.Items)

	return nil
}

func (s *Synchronizer) applyDeleteItem(ctx context.Context, action models.DeleteItem) error {
	lists, err := s.remote.FetchLists(ctx, action.ProfileID)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		s.logInapplicable("DeleteItem", action.ItemID)
		return nil
	}

	list := lists[0]
	kept := make([]models.Item, 0, len(list.Items))
	for _, existing := range list.Items {
		if existing.ID != action.ItemID {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(list.Items) {
		// already deleted
		return nil
	}

	updated, err := s.remote.UpdateList(ctx, list.ID, kept)
	if err != nil {
		return err
	}
	s.snapshots.Save(ctx, action.ProfileID, updated.Items)

	return nil
}

func (s *Synchronizer) logInapplicable(op, itemID string) {
	s.logger.Warn().
		Str("func", "Synchronizer."+op).
		Str("item_id", itemID).
		Err(ErrInapplicableAction).
		Msg("entry dropped")
}

// Pending returns the number of queued mutations.
func (s *Synchronizer) Pending() int {
	return s.queue.Len()
}

// CanSync reports whether a drain would do work right now.
func (s *Synchronizer) CanSync() bool {
	s.mu.Lock()
	syncing := s.syncing
	s.mu.Unlock()

	return s.monitor.Online() && !syncing && s.queue.Len() > 0
}

// LastSyncTime returns when the last drain finished, zero before the first.
func (s *Synchronizer) LastSyncTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSyncTime
}

// Errors returns the failures recorded by the most recent drain.
func (s *Synchronizer) Errors() []models.SyncError {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.SyncError(nil), s.syncErrors...)
}

// ErrorsFor filters the recorded failures by action type.
func (s *Synchronizer) ErrorsFor(action models.ActionType) []models.SyncError {
	s.mu.Lock()
	defer s.mu.Unlock()

	var filtered []models.SyncError
	for _, syncErr := range s.syncErrors {
		if syncErr.Action == action {
			filtered = append(filtered, syncErr)
		}
	}

	return filtered
}

// ClearErrors drops the recorded failures.
func (s *Synchronizer) ClearErrors() {
	s.mu.Lock()
	s.syncErrors = nil
	s.mu.Unlock()
}
