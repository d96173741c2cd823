// File: internal/auth/blocklist.go
package auth

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenBlocklistService remembers revoked token ids until the tokens expire.
type TokenBlocklistService interface {
	// AddToBlocklist adds a token's JTI (JWT ID) to the blocklist with a given expiration.
	AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error
	// IsBlocklisted checks if a token's JTI is in the blocklist.
	IsBlocklisted(ctx context.Context, jti string) (bool, error)
}

// InMemoryBlocklistService is a process-local TokenBlocklistService. Revocations
// do not survive a restart and are not shared between instances.
type InMemoryBlocklistService struct {
	cache *cache.Cache
}

// NewInMemoryBlocklistService creates a blocklist whose expired entries are
// purged every cleanupInterval.
func NewInMemoryBlocklistService(cleanupInterval time.Duration) *InMemoryBlocklistService {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &InMemoryBlocklistService{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

// AddToBlocklist keeps jti for exactly as long as the token would have been valid.
func (s *InMemoryBlocklistService) AddToBlocklist(_ context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(jti, struct{}{}, ttl)
	return nil
}

func (s *InMemoryBlocklistService) IsBlocklisted(_ context.Context, jti string) (bool, error) {
	_, found := s.cache.Get(jti)
	return found, nil
}
