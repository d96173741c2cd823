// File: internal/listing/service.go
package listing

import (
	"context"
	"errors"
	"fmt"

	"estate_backend/internal/authz"
	"estate_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for listing-related business logic.
type Service interface {
	CreateListing(ctx context.Context, actor uuid.UUID, req CreateListingRequest) (*Listing, error)
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	UpdateListing(ctx context.Context, actor, id uuid.UUID, req UpdateListingRequest) (*Listing, error)
	DeleteListing(ctx context.Context, actor, id uuid.UUID) error
	SearchListings(ctx context.Context, params SearchParams) ([]Listing, error)
}

// ServiceImplementation implements the listing Service interface.
type ServiceImplementation struct {
	repo     Repository
	searcher Searcher
	indexer  Indexer
	logger   *zap.Logger
}

// NewService creates a new listing service.
func NewService(repo Repository, searcher Searcher, indexer Indexer, logger *zap.Logger) Service {
	return &ServiceImplementation{
		repo:     repo,
		searcher: searcher,
		indexer:  indexer,
		logger:   logger.Named("listing_service"),
	}
}

// CreateListing stores a new listing owned by actor. A userRef naming anyone
// else is refused.
func (s *ServiceImplementation) CreateListing(ctx context.Context, actor uuid.UUID, req CreateListingRequest) (*Listing, error) {
	owner := actor
	if req.UserRef != "" {
		var err error
		if owner, err = authz.AuthorizeRaw(actor, req.UserRef, authz.CreateListing); err != nil {
			return nil, err
		}
	} else if err := authz.Authorize(actor, owner, authz.CreateListing); err != nil {
		return nil, err
	}

	images := req.ImageURLs
	if images == nil {
		images = []string{}
	}
	listing := &Listing{
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		RegularPrice:  req.RegularPrice,
		DiscountPrice: req.DiscountPrice,
		Bathrooms:     req.Bathrooms,
		Bedrooms:      req.Bedrooms,
		Furnished:     req.Furnished,
		Parking:       req.Parking,
		Type:          ListingType(req.Type),
		Offer:         req.Offer,
		ImageURLs:     images,
		UserRef:       owner,
	}
	if !listing.Type.Valid() {
		return nil, common.ErrBadRequest.WithMessage("type must be rent or sale")
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}
	s.logger.Info("Listing created", zap.String("listing_id", listing.ID.String()), zap.String("user_id", owner.String()))
	s.index(ctx, listing)
	return listing, nil
}

func (s *ServiceImplementation) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateListing applies a partial update. The ownership check and the write
// are one conditional operation in the store; the pre-read only decides which
// error the caller sees.
func (s *ServiceImplementation) UpdateListing(ctx context.Context, actor, id uuid.UUID, req UpdateListingRequest) (*Listing, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, existing.UserRef, authz.UpdateListing); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateOwned(ctx, id, actor, req.Patch())
	if errors.Is(err, ErrNoOwnedMatch) {
		return nil, s.classifyMiss(ctx, actor, id, authz.UpdateListing)
	}
	if err != nil {
		return nil, err
	}
	s.index(ctx, updated)
	return updated, nil
}

func (s *ServiceImplementation) DeleteListing(ctx context.Context, actor, id uuid.UUID) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, existing.UserRef, authz.DeleteListing); err != nil {
		return err
	}

	if err := s.repo.DeleteOwned(ctx, id, actor); err != nil {
		if errors.Is(err, ErrNoOwnedMatch) {
			return s.classifyMiss(ctx, actor, id, authz.DeleteListing)
		}
		return err
	}
	s.logger.Info("Listing deleted", zap.String("listing_id", id.String()), zap.String("user_id", actor.String()))
	if err := s.indexer.Remove(ctx, id); err != nil {
		s.logger.Warn("Failed to remove listing from search index", zap.String("listing_id", id.String()), zap.Error(err))
	}
	return nil
}

// SearchListings normalizes params and runs the query on the configured backend.
func (s *ServiceImplementation) SearchListings(ctx context.Context, params SearchParams) ([]Listing, error) {
	q := BuildQuery(params)
	listings, err := s.searcher.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	return listings, nil
}

// classifyMiss explains a conditional write that matched nothing: the listing
// vanished or changed hands between the read and the write.
func (s *ServiceImplementation) classifyMiss(ctx context.Context, actor, id uuid.UUID, action authz.Action) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, current.UserRef, action); err != nil {
		return err
	}
	return fmt.Errorf("listing %s: conditional write matched nothing for its owner", id)
}

func (s *ServiceImplementation) index(ctx context.Context, l *Listing) {
	if err := s.indexer.Index(ctx, l); err != nil {
		s.logger.Warn("Failed to index listing", zap.String("listing_id", l.ID.String()), zap.Error(err))
	}
}
