package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewSQLiteConnection opens a pure-Go SQLite database and brings its schema up to date.
// path may be ":memory:".
func NewSQLiteConnection(path, env string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: NewGormLogger(env),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// SQLite allows a single writer; a single connection also keeps :memory: databases alive
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if path != ":memory:" {
		if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
			return nil, fmt.Errorf("failed to set WAL mode: %w", err)
		}
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}

	logrus.Infof("Successfully opened SQLite database at %s", path)

	return db, nil
}
