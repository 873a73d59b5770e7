package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/easysholi/listsync/internal/logger"
)

type sqlKVStore struct {
	*DB
	logger *logger.Logger
}

// NewKVStore builds the SQLite-backed [KVStore] used for all durable local
// state (mutation queue, list snapshots).
func NewKVStore(db *DB, log *logger.Logger) KVStore {
	return &sqlKVStore{
		DB:     db,
		logger: log,
	}
}

func (s *sqlKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.DB.QueryRowContext(ctx, getKVValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Err(err).
			Str("func", "sqlKVStore.Get").
			Str("key", key).
			Msg("failed to read kv value")
		return nil, false, fmt.Errorf("failed to read kv value (key=%s): %w", key, err)
	}

	return value, true, nil
}

func (s *sqlKVStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, putKVValue, key, value)
	if err != nil {
		s.logger.Err(err).
			Str("func", "sqlKVStore.Put").
			Str("key", key).
			Int("size", len(value)).
			Msg("failed to upsert kv value")
		return fmt.Errorf("failed to upsert kv value (key=%s): %w", key, err)
	}

	return nil
}

func (s *sqlKVStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, deleteKVValue, key)
	if err != nil {
		s.logger.Err(err).
			Str("func", "sqlKVStore.Delete").
			Str("key", key).
			Msg("failed to delete kv value")
		return fmt.Errorf("failed to delete kv value (key=%s): %w", key, err)
	}

	return nil
}
