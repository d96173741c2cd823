// File: internal/platform/mongo/client.go
package mongo

import (
	"context"
	"fmt"
	"time"

	"estate_backend/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectTimeout bounds connecting, pinging and disconnecting.
const ConnectTimeout = 10 * time.Second

// NewDatabase connects to MONGO_URI, pings the primary and returns the configured database.
func NewDatabase(cfg *config.Config, logger *zap.Logger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	return client.Database(cfg.MongoDatabase), nil
}

// Close disconnects the client behind db.
func Close(db *mongo.Database, logger *zap.Logger) {
	if db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
	defer cancel()
	if err := db.Client().Disconnect(ctx); err != nil {
		logger.Error("Error disconnecting from MongoDB", zap.Error(err))
	}
}
