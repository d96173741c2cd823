// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"estate_backend/internal/app"
	"estate_backend/internal/auth"
	"estate_backend/internal/config"
	"estate_backend/internal/filestorage"
	"estate_backend/internal/listing"
	"estate_backend/internal/store"
	"estate_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		provideLogger,
		store.New,
		wire.FieldsOf(new(*store.Stores), "Users", "Listings"),
		provideSearchClient,

		// Listings
		listing.NewIndexer,
		listing.NewSearcher,
		listing.NewService,
		listing.NewHandler,

		// Users
		provideListingStore,
		user.NewService,
		user.NewHandler,
		wire.Bind(new(user.SessionRevoker), new(auth.Service)),

		// Auth
		auth.NewJWTService,
		provideBlocklist,
		auth.NewService,
		auth.NewHandler,

		// Uploads
		provideImageStore,
		filestorage.NewHandler,

		// Jobs
		provideOrphanAuditJob,

		// Application Layer
		app.NewHandlers,
		app.NewServer,
	)
	return nil, nil, nil
}
