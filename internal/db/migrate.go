package db

import (
	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by this service.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Appointment{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs migrations against an explicit connection.
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", logger.Fields{
		"models_count": len(models),
	})
	return nil
}
