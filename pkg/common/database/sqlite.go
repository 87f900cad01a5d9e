package database

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/guestflow/platform/pkg/common/logger"
	"gorm.io/gorm"
)

// OpenSQLite opens a file-backed SQLite database. Used by the one-shot
// merge utility for the legacy database and by tests for throwaway stores.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	return db, nil
}

// OpenSQLiteFile is like OpenSQLite but fails when the file does not
// already exist, so a mistyped path cannot silently create an empty source.
func OpenSQLiteFile(path string) (*gorm.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite database %s: %w", path, err)
	}
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	logger.Log.WithField("path", path).Info("Opened SQLite database")
	return db, nil
}
