package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Global database instance shared by repositories.
var db *gorm.DB

// InitDatabase opens the SQLite database at dsn and migrates the schema.
func InitDatabase(dsn string) error {
	if db != nil {
		return nil
	}

	if dir := filepath.Dir(dsn); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	opened, err := Open(dsn)
	if err != nil {
		return err
	}
	db = opened
	return nil
}

// Open opens a standalone database handle; used directly by tests.
func Open(dsn string) (*gorm.DB, error) {
	handle, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := handle.AutoMigrate(&HistoryRecord{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return handle, nil
}

// GetDB returns the global database instance.
func GetDB() *gorm.DB {
	if db == nil {
		panic("database not initialized, call InitDatabase() first")
	}
	return db
}
