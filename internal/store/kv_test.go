package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easysholi/listsync/internal/config"
	"github.com/easysholi/listsync/internal/logger"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:     db,
		logger: logger.Nop(),
	}
}

func newTestKVStore(t *testing.T, db *sql.DB) KVStore {
	t.Helper()
	return NewKVStore(newDBFromSQL(db), logger.Nop())
}

// ── sqlite round trip ──

func newSQLiteKVStore(t *testing.T) KVStore {
	t.Helper()

	ctx := context.Background()
	db, err := NewConnectSQLite(ctx, config.DB{DSN: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate())

	return NewKVStore(db, logger.Nop())
}

func TestSQLKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newSQLiteKVStore(t)

	_, ok, err := kv.Get(ctx, "queue")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put(ctx, "queue", []byte(`[1,2,3]`)))

	value, ok, err := kv.Get(ctx, "queue")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`[1,2,3]`), value)

	// upsert replaces the value in place
	require.NoError(t, kv.Put(ctx, "queue", []byte(`[]`)))

	value, ok, err = kv.Get(ctx, "queue")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`[]`), value)

	require.NoError(t, kv.Delete(ctx, "queue"))

	_, ok, err = kv.Get(ctx, "queue")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLKVStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	kv := newSQLiteKVStore(t)

	require.NoError(t, kv.Put(ctx, "a", []byte("first")))
	require.NoError(t, kv.Put(ctx, "b", []byte("second")))
	require.NoError(t, kv.Delete(ctx, "a"))

	value, ok, err := kv.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), value)
}

// ── driver error paths ──

func TestSQLKVStore_GetQueryError(t *testing.T) {
	db, mock := newTestDB(t)
	kv := newTestKVStore(t, db)

	driverErr := errors.New("disk I/O error")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value")).
		WithArgs("queue").
		WillReturnError(driverErr)

	_, ok, err := kv.Get(context.Background(), "queue")
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, driverErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLKVStore_PutExecError(t *testing.T) {
	db, mock := newTestDB(t)
	kv := newTestKVStore(t, db)

	driverErr := errors.New("database is locked")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
		WithArgs("queue", []byte("{}")).
		WillReturnError(driverErr)

	err := kv.Put(context.Background(), "queue", []byte("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, driverErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLKVStore_DeleteExecError(t *testing.T) {
	db, mock := newTestDB(t)
	kv := newTestKVStore(t, db)

	driverErr := errors.New("database is locked")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_store")).
		WithArgs("queue").
		WillReturnError(driverErr)

	err := kv.Delete(context.Background(), "queue")
	require.Error(t, err)
	assert.ErrorIs(t, err, driverErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
