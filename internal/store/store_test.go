package store

import (
	"context"
	"path/filepath"
	"testing"

	"estate_backend/internal/config"
	"estate_backend/internal/listing"
	"estate_backend/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:       config.DriverSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "estate.db"),
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
		LogLevel:       "error",
	}

	stores, cleanup, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	u := &user.User{Username: "ada", Email: "ada@example.com", Password: "hash"}
	require.NoError(t, stores.Users.Create(ctx, u))

	l := &listing.Listing{
		Name: "Loft", Description: "d", Address: "a", RegularPrice: 10,
		Bedrooms: 1, Bathrooms: 1, Type: listing.TypeRent, UserRef: u.ID,
	}
	require.NoError(t, stores.Listings.Create(ctx, l))

	owned, err := stores.Listings.FindByOwner(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, _, err := New(&config.Config{DBDriver: "cassandra"}, zap.NewNop())
	assert.Error(t, err)
}
