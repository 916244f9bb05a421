package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/EndaleK/Synaptic-sub012/internal/platform/env"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

func openSQLite(logg *logger.Logger) (*gorm.DB, error) {
	path := env.Get("SQLITE_PATH", "synaptic.db", logg)

	// WAL keeps readers from blocking the writer; the busy timeout
	// covers the single-writer lock under concurrent reviews.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite at %s: %w", path, err)
	}
	return db, nil
}
