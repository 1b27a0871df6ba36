package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/engineers4hire/jobdesk/internal/models"
)

// Connect opens the postgres database and runs migrations for the
// persisted session tables. Job listings are deliberately not migrated:
// the job collection lives in memory and is refetched on every load.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(&models.SessionEntry{}, &models.ApplicationNote{}); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}
