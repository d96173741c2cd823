// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"estate_backend/internal/config"
	"estate_backend/internal/listing"
	platformElasticsearch "estate_backend/internal/platform/elasticsearch"
	"estate_backend/internal/platform/logger"
	"estate_backend/internal/store"

	"go.uber.org/zap"
)

func main() {
	syncListingsCmd := flag.NewFlagSet("sync-listings", flag.ExitOnError)
	batchSize := syncListingsCmd.Int("batch-size", 100, "Batch size for syncing listings")
	esRefresh := syncListingsCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")

	if len(os.Args) > 1 && os.Args[1] == "sync-listings" {
		_ = syncListingsCmd.Parse(os.Args[2:])
		if err := syncListings(*batchSize, *esRefresh); err != nil {
			log.Fatalf("FATAL: Listing synchronization failed: %v", err)
		}
		return
	}

	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("ERROR: Server failed: %v", err)
			return
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
}

// syncListings rebuilds the search index from the primary store.
func syncListings(batchSize int, esRefresh string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = appLogger.Sync() }()

	stores, closeStores, err := store.New(cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeStores()

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		return err
	}
	if esClient == nil {
		appLogger.Fatal("ELASTICSEARCH_URL must be set to sync listings")
	}

	ctx := context.Background()
	if err := platformElasticsearch.CreateListingsIndexIfNotExists(ctx, esClient, appLogger); err != nil {
		return err
	}

	report, err := listing.SyncToIndex(ctx, stores.Listings, esClient, appLogger, batchSize, esRefresh)
	appLogger.Info("Listing synchronization finished",
		zap.Int("synced", report.Synced),
		zap.Int("failed", report.Failed),
		zap.Int("batches", report.Batches),
	)
	return err
}
