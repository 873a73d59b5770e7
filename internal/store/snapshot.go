package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/models"
)

// snapshotKey holds the last known list contents per profile, written on
// every local mutation so restarts and offline launches see the most recent
// state.
const snapshotKey = "easysholi_offline_data"

// SnapshotStore persists the latest local view of each profile's shopping
// list, keyed by profile id.
type SnapshotStore struct {
	kv     KVStore
	logger *logger.Logger

	mu      sync.Mutex
	records map[string]models.SnapshotRecord
}

func NewSnapshotStore(kv KVStore, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		kv:      kv,
		logger:  log,
		records: make(map[string]models.SnapshotRecord),
	}
}

// Save stamps the record with the current time and persists it. A failed
// durable write is logged, the in-memory copy stays current.
func (s *SnapshotStore) Save(ctx context.Context, profileID string, items []models.Item) models.SnapshotRecord {
	record := models.SnapshotRecord{
		Items:        append([]models.Item(nil), items...),
		LastModified: time.Now().UTC(),
	}

	s.mu.Lock()
	s.records[profileID] = record
	s.persistLocked(ctx)
	s.mu.Unlock()

	return record
}

// Get returns the snapshot for the profile, or ok=false when none exists.
func (s *SnapshotStore) Get(profileID string) (models.SnapshotRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[profileID]
	if !ok {
		return models.SnapshotRecord{}, false
	}

	copied := models.SnapshotRecord{
		Items:        append([]models.Item(nil), record.Items...),
		LastModified: record.LastModified,
	}

	return copied, true
}

// Delete removes the snapshot for the profile, if present, and persists.
func (s *SnapshotStore) Delete(ctx context.Context, profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[profileID]; !ok {
		return
	}

	delete(s.records, profileID)
	s.persistLocked(ctx)
}

// Load hydrates the snapshots from the durable store. A missing key is not
// an error, the client simply starts with no local state.
func (s *SnapshotStore) Load(ctx context.Context) error {
	data, ok, err := s.kv.Get(ctx, snapshotKey)
	if err != nil {
		return fmt.Errorf("load snapshots: %w", err)
	}
	if !ok {
		return nil
	}

	records := make(map[string]models.SnapshotRecord)
	if err = json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode snapshots: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	return nil
}

// Clear drops all snapshots in memory and in the durable store.
func (s *SnapshotStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]models.SnapshotRecord)
	if err := s.kv.Delete(ctx, snapshotKey); err != nil {
		s.logger.Err(err).
			Str("func", "SnapshotStore.Clear").
			Msg("failed to clear persisted snapshots")
	}
}

func (s *SnapshotStore) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.records)
	if err != nil {
		s.logger.Err(err).
			Str("func", "SnapshotStore.persistLocked").
			Msg("failed to encode snapshots")
		return
	}

	if err = s.kv.Put(ctx, snapshotKey, data); err != nil {
		s.logger.Err(err).
			Str("func", "SnapshotStore.persistLocked").
			Msg("failed to persist snapshots, records remain in memory")
	}
}
