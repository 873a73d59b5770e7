// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"time"

	"github.com/easysholi/listsync/internal/adapter"
	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/internal/store"
	"github.com/easysholi/listsync/models"
)

// ListSession owns the in-memory item collection of the active shopping
// list. Every mutation is optimistic: it lands in memory and in the local
// snapshot first, then reaches the remote store either directly or through
// the mutation queue. Local state is never rolled back on a remote failure;
// the queued mutation reconciles later.
type ListSession struct {
	remote    adapter.RemoteStore
	queue     *store.MutationQueue
	snapshots *store.SnapshotStore
	monitor   *Monitor
	logger    *logger.Logger

	list      *models.List
	tagFilter string
}

func NewListSession(
	remote adapter.RemoteStore,
	queue *store.MutationQueue,
	snapshots *store.SnapshotStore,
	monitor *Monitor,
	log *logger.Logger,
) *ListSession {
	return &ListSession{
		remote:    remote,
		queue:     queue,
		snapshots: snapshots,
		monitor:   monitor,
		logger:    log,
	}
}

// Load makes the profile's list the active one. Offline, or when
// offlineFirst is set and a snapshot exists, the snapshot is used without
// touching the network; offline with no snapshot synthesizes an empty
// placeholder list. Any list built without a remote round trip carries the
// local sentinel id, meaning the remote id is unconfirmed until the next
// online load or drain.
// Online, the remote list is fetched (created empty when the profile has
// none) and written through to the snapshot store; a failed fetch falls
// back to any existing snapshot.
func (s *ListSession) Load(ctx context.Context, profileID string, offlineFirst bool) error {
	snapshot, hasSnapshot := s.snapshots.Get(profileID)

	if !s.monitor.Online() || (offlineFirst && hasSnapshot) {
		if hasSnapshot {
			s.list = &models.List{
				ID:        models.LocalListID(profileID),
				ProfileID: profileID,
				Items:     snapshot.Items,
			}
			return nil
		}
		if !s.monitor.Online() {
			s.list = &models.List{
				ID:        models.LocalListID(profileID),
				ProfileID: profileID,
				Items:     []models.Item{},
			}
			return nil
		}
	}

	lists, err := s.remote.FetchLists(ctx, profileID)
	if err != nil {
		if hasSnapshot {
			s.logger.Warn().
				Str("func", "ListSession.Load").
				Str("profile_id", profileID).
				Err(err).
				Msg("remote fetch failed, using snapshot")
			s.list = &models.List{
				ID:        models.LocalListID(profileID),
				ProfileID: profileID,
				Items:     snapshot.Items,
			}
			return nil
		}
		return err
	}

	var list models.List
	if len(lists) == 0 {
		list, err = s.remote.CreateList(ctx, profileID, []models.Item{})
		if err != nil {
			return err
		}
	} else {
		list = lists[0]
	}

	s.list = &list
	s.snapshots.Save(ctx, profileID, list.Items)

	return nil
}

// AddItem appends a new item and persists the mutation.
func (s *ListSession) AddItem(ctx context.Context, name string, quantity int, tagID string) (models.Outcome, error) {
	if s.list == nil {
		return models.OutcomeDiscarded, ErrNoActiveList
	}

	item := models.NewItem(name, quantity, tagID)
	items := append(append([]models.Item(nil), s.list.Items...), item)

	return s.commit(ctx, items)
}

// UpdateItem applies the patch to the item with the given id.
func (s *ListSession) UpdateItem(ctx context.Context, itemID string, patch models.ItemPatch) (models.Outcome, error) {
	if s.list == nil {
		return models.OutcomeDiscarded, ErrNoActiveList
	}

	idx := s.indexOf(itemID)
	if idx == -1 {
		return models.OutcomeDiscarded, ErrInapplicableAction
	}

	if patch.UpdatedAt == nil {
		now := time.Now().UTC()
		patch.UpdatedAt = &now
	}

	items := append([]models.Item(nil), s.list.Items...)
	items[idx] = ApplyItemPatch(items[idx], patch)

	return s.commit(ctx, items)
}

// ToggleCompleted flips the completion flag of the item with the given id.
func (s *ListSession) ToggleCompleted(ctx context.Context, itemID string) (models.Outcome, error) {
	if s.list == nil {
		return models.OutcomeDiscarded, ErrNoActiveList
	}

	idx := s.indexOf(itemID)
	if idx == -1 {
		return models.OutcomeDiscarded, ErrInapplicableAction
	}

	completed := !s.list.Items[idx].Completed
	return s.UpdateItem(ctx, itemID, models.ItemPatch{Completed: &completed})
}

// DeleteItem removes the item with the given id.
func (s *ListSession) DeleteItem(ctx context.Context, itemID string) (models.Outcome, error) {
	if s.list == nil {
		return models.OutcomeDiscarded, ErrNoActiveList
	}

	if s.indexOf(itemID) == -1 {
		return models.OutcomeDiscarded, ErrInapplicableAction
	}

	items := make([]models.Item, 0, len(s.list.Items)-1)
	for _, item := range s.list.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}

	return s.commit(ctx, items)
}

// ClearCompleted removes every completed item.
func (s *ListSession) ClearCompleted(ctx context.Context) (models.Outcome, error) {
	if s.list == nil {
		return models.OutcomeDiscarded, ErrNoActiveList
	}

	items := make([]models.Item, 0, len(s.list.Items))
	for _, item := range s.list.Items {
		if !item.Completed {
			items = append(items, item)
		}
	}
	if len(items) == len(s.list.Items) {
		return models.OutcomeNoop, nil
	}

	return s.commit(ctx, items)
}

// Drop deletes the active list remotely and forgets its local snapshot.
// Requires connectivity when the list exists remotely; a list that only
// ever lived locally is simply forgotten.
func (s *ListSession) Drop(ctx context.Context) error {
	if s.list == nil {
		return ErrNoActiveList
	}

	profileID := s.list.ProfileID
	if !models.IsLocalID(s.list.ID) {
		if !s.monitor.Online() {
			return ErrOffline
		}
		if err := s.remote.DeleteList(ctx, s.list.ID); err != nil {
			return err
		}
	}

	s.snapshots.Delete(ctx, profileID)
	s.Reset()

	return nil
}

// commit is the single write path: memory first, then snapshot, then the
// remote store, falling back to the queue on any remote obstacle.
func (s *ListSession) commit(ctx context.Context, items []models.Item) (models.Outcome, error) {
	s.list.Items = items
	s.snapshots.Save(ctx, s.list.ProfileID, items)

	if s.monitor.Online() && !models.IsLocalID(s.list.ID) {
		updated, err := s.remote.UpdateList(ctx, s.list.ID, items)
		if err == nil {
			// remote is authoritative for ids and normalized fields
			s.list = &updated
			s.snapshots.Save(ctx, updated.ProfileID, updated.Items)
			return models.OutcomeApplied, nil
		}

		s.logger.Warn().
			Str("func", "ListSession.commit").
			Str("list_id", s.list.ID).
			Err(err).
			Msg("remote update failed, queueing mutation")
	}

	s.queue.Enqueue(ctx, models.UpdateList{
		ListID:    s.list.ID,
		ProfileID: s.list.ProfileID,
		Items:     items,
	})

	return models.OutcomeQueued, nil
}

func (s *ListSession) indexOf(itemID string) int {
	for i, item := range s.list.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// Items returns a copy of the active list's items.
func (s *ListSession) Items() []models.Item {
	if s.list == nil {
		return nil
	}
	return append([]models.Item(nil), s.list.Items...)
}

// FilteredItems returns the items matching the current tag filter.
func (s *ListSession) FilteredItems() []models.Item {
	if s.list == nil {
		return nil
	}
	if s.tagFilter == "" {
		return s.Items()
	}

	var filtered []models.Item
	for _, item := range s.list.Items {
		if item.TagID == s.tagFilter {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// SetTagFilter restricts FilteredItems to one tag; empty clears the filter.
func (s *ListSession) SetTagFilter(tagID string) {
	s.tagFilter = tagID
}

// ActiveList returns the loaded list, or ok=false before Load.
func (s *ListSession) ActiveList() (models.List, bool) {
	if s.list == nil {
		return models.List{}, false
	}

	list := *s.list
	list.Items = append([]models.Item(nil), s.list.Items...)
	return list, true
}

func (s *ListSession) CompletedCount() int {
	if s.list == nil {
		return 0
	}

	count := 0
	for _, item := range s.list.Items {
		if item.Completed {
			count++
		}
	}
	return count
}

func (s *ListSession) TotalCount() int {
	if s.list == nil {
		return 0
	}
	return len(s.list.Items)
}

// Reset drops the active list and filter, keeping queue and snapshots.
func (s *ListSession) Reset() {
	s.list = nil
	s.tagFilter = ""
}
