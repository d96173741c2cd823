// File: internal/user/service.go
package user

import (
	"context"
	"fmt"
	"strings"

	"estate_backend/internal/authz"
	"estate_backend/internal/config"
	"estate_backend/internal/listing"
	"estate_backend/internal/platform/crypto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListingStore is the part of the listing store the user service needs.
type ListingStore interface {
	FindByOwner(ctx context.Context, owner uuid.UUID) ([]listing.Listing, error)
	DeleteByOwner(ctx context.Context, owner uuid.UUID) (int64, error)
}

// Service defines the user operations exposed over HTTP.
type Service interface {
	GetUser(ctx context.Context, id uuid.UUID) (*PublicUser, error)
	UpdateUser(ctx context.Context, actor uuid.UUID, rawID string, req UpdateUserRequest) (*PublicUser, error)
	DeleteUser(ctx context.Context, actor uuid.UUID, rawID string) error
	GetUserListings(ctx context.Context, actor uuid.UUID, rawID string) ([]listing.Listing, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	listings ListingStore
	indexer  listing.Indexer
	cfg      *config.Config
	logger   *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, listings ListingStore, indexer listing.Indexer, cfg *config.Config, logger *zap.Logger) Service {
	return &ServiceImplementation{
		repo:     repo,
		listings: listings,
		indexer:  indexer,
		cfg:      cfg,
		logger:   logger.Named("user_service"),
	}
}

// GetUser returns any user's public profile.
func (s *ServiceImplementation) GetUser(ctx context.Context, id uuid.UUID) (*PublicUser, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToPublic(u), nil
}

// UpdateUser changes the caller's own account. A new password is hashed into
// the password field, which is what sign-in reads.
func (s *ServiceImplementation) UpdateUser(ctx context.Context, actor uuid.UUID, rawID string, req UpdateUserRequest) (*PublicUser, error) {
	id, err := authz.AuthorizeRaw(actor, rawID, authz.UpdateAccount)
	if err != nil {
		return nil, err
	}

	patch := Patch{
		Username: nonEmpty(req.Username),
		Email:    nonEmpty(req.Email),
		Avatar:   nonEmpty(req.Avatar),
	}
	if pw := nonEmpty(req.Password); pw != nil {
		hash, err := crypto.HashPassword(*pw)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		u, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return ToPublic(u), nil
	}

	u, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User updated", zap.String("user_id", id.String()), zap.Bool("password_changed", patch.PasswordHash != nil))
	return ToPublic(u), nil
}

// DeleteUser removes the caller's own account. With the cascade policy the
// user's listings go too; with orphan they stay and the audit job reports them.
//
// The user row goes first. Users and listings may live in different stores,
// so there is no shared transaction; a failed cascade leaves orphaned
// listings, which the orphan audit job reports and can sweep.
func (s *ServiceImplementation) DeleteUser(ctx context.Context, actor uuid.UUID, rawID string) error {
	id, err := authz.AuthorizeRaw(actor, rawID, authz.DeleteAccount)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()), zap.String("policy", s.cfg.UserDeletePolicy))

	if s.cfg.UserDeletePolicy == config.DeletePolicyCascade {
		if err := s.deleteListings(ctx, id); err != nil {
			s.logger.Error("Failed to cascade listing delete, listings left orphaned",
				zap.String("user_id", id.String()), zap.Error(err))
		}
	}
	return nil
}

// GetUserListings returns the caller's own listings.
func (s *ServiceImplementation) GetUserListings(ctx context.Context, actor uuid.UUID, rawID string) ([]listing.Listing, error) {
	id, err := authz.AuthorizeRaw(actor, rawID, authz.ViewOwnListings)
	if err != nil {
		return nil, err
	}
	return s.listings.FindByOwner(ctx, id)
}

func (s *ServiceImplementation) deleteListings(ctx context.Context, owner uuid.UUID) error {
	owned, err := s.listings.FindByOwner(ctx, owner)
	if err != nil {
		return err
	}
	n, err := s.listings.DeleteByOwner(ctx, owner)
	if err != nil {
		return err
	}
	for i := range owned {
		if err := s.indexer.Remove(ctx, owned[i].ID); err != nil {
			s.logger.Warn("Failed to remove listing from search index", zap.String("listing_id", owned[i].ID.String()), zap.Error(err))
		}
	}
	s.logger.Info("Cascaded listing delete", zap.String("user_id", owner.String()), zap.Int64("deleted", n))
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
