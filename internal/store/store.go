// File: internal/store/store.go
package store

import (
	"context"
	"fmt"

	"estate_backend/internal/config"
	"estate_backend/internal/listing"
	"estate_backend/internal/platform/database"
	platformmongo "estate_backend/internal/platform/mongo"
	"estate_backend/internal/user"

	"go.uber.org/zap"
)

// Stores bundles the repositories backed by the configured primary store.
type Stores struct {
	Users    user.Repository
	Listings listing.Repository
}

// New opens the store selected by DB_DRIVER, prepares its schema or indexes
// and returns the repositories with a cleanup func that closes the connection.
func New(cfg *config.Config, logger *zap.Logger) (*Stores, func(), error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		db, err := platformmongo.NewDatabase(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() { platformmongo.Close(db, logger) }

		ctx, cancel := context.WithTimeout(context.Background(), platformmongo.ConnectTimeout)
		defer cancel()
		if err := user.EnsureMongoIndexes(ctx, db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("user indexes: %w", err)
		}
		if err := listing.EnsureMongoIndexes(ctx, db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("listing indexes: %w", err)
		}
		return &Stores{
			Users:    user.NewMongoRepository(db),
			Listings: listing.NewMongoRepository(db),
		}, cleanup, nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.NewGORM(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() { database.CloseGORMDB(db, logger) }

		if err := database.Migrate(db, &user.User{}, &listing.Listing{}); err != nil {
			cleanup()
			return nil, nil, err
		}
		return &Stores{
			Users:    user.NewGORMRepository(db),
			Listings: listing.NewGORMRepository(db),
		}, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
