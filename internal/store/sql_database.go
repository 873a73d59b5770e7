package store

import (
	"database/sql"

	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/migrations"
)

// DB wraps the local database handle together with the logger used by the
// repositories built on top of it.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
