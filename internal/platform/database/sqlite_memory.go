package database

import (
	"fmt"

	"estate_backend/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenInMemory opens a private in-memory sqlite database and migrates models
// into it. Each call gets its own database. Used by tests and local smoke runs.
func OpenInMemory(logger *zap.Logger, models ...interface{}) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(sqlite.Open(dsn), &config.Config{LogLevel: "error"}, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// One connection keeps the shared-cache database alive and avoids SQLITE_LOCKED.
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db, models...); err != nil {
		return nil, err
	}
	return db, nil
}
