// File: cmd/server/providers.go
package main

import (
	"context"
	"log"

	"estate_backend/internal/auth"
	"estate_backend/internal/config"
	"estate_backend/internal/filestorage"
	"estate_backend/internal/jobs"
	"estate_backend/internal/listing"
	platformElasticsearch "estate_backend/internal/platform/elasticsearch"
	"estate_backend/internal/platform/logger"
	"estate_backend/internal/store"
	"estate_backend/internal/user"

	"go.uber.org/zap"
)

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := l.Sync(); err != nil {
			log.Printf("WARN: Failed to sync logger during cleanup: %v", err)
		}
	}
	return l, cleanup, nil
}

func provideListingStore(repo listing.Repository) user.ListingStore {
	return repo
}

func provideBlocklist(cfg *config.Config) auth.TokenBlocklistService {
	return auth.NewInMemoryBlocklistService(cfg.BlocklistCleanup)
}

func provideOrphanAuditJob(stores *store.Stores, indexer listing.Indexer, logger *zap.Logger, cfg *config.Config) *jobs.OrphanAuditJob {
	return jobs.NewOrphanAuditJob(stores.Listings, stores.Users, indexer, logger, cfg)
}

// provideSearchClient connects to Elasticsearch when configured and makes sure
// the listings index exists. A missing index is logged, not fatal.
func provideSearchClient(cfg *config.Config, logger *zap.Logger) (*platformElasticsearch.ESClientWrapper, error) {
	client, err := platformElasticsearch.NewClient(cfg, logger)
	if err != nil || client == nil {
		return client, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancel()
	if err := platformElasticsearch.CreateListingsIndexIfNotExists(ctx, client, logger); err != nil {
		logger.Error("Failed to create Elasticsearch listings index", zap.Error(err))
	}
	return client, nil
}

func provideImageStore(cfg *config.Config, logger *zap.Logger) (*filestorage.ImageStore, error) {
	return filestorage.NewImageStore(cfg.UploadDir, logger)
}
