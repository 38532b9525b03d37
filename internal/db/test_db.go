package db

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB() (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate database.
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get test database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return conn, nil
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}
