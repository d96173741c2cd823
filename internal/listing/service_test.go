package listing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"estate_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock type for listing.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, listing *Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Listing), args.Error(1)
}

func (m *MockRepository) FindByOwner(ctx context.Context, owner uuid.UUID) ([]Listing, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
}

func (m *MockRepository) Search(ctx context.Context, q Query) ([]Listing, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
}

func (m *MockRepository) UpdateOwned(ctx context.Context, id, owner uuid.UUID, patch Patch) (*Listing, error) {
	args := m.Called(ctx, id, owner, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Listing), args.Error(1)
}

func (m *MockRepository) DeleteOwned(ctx context.Context, id, owner uuid.UUID) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

func (m *MockRepository) DeleteByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) OwnerIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockRepository) FindBatch(ctx context.Context, offset, limit int) ([]Listing, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
}

// MockIndexer is a mock type for listing.Indexer
type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Index(ctx context.Context, l *Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockIndexer) Remove(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService() (Service, *MockRepository, *MockIndexer) {
	repo := new(MockRepository)
	idx := new(MockIndexer)
	return NewService(repo, repo, idx, zap.NewNop()), repo, idx
}

func ownedListing(owner uuid.UUID) *Listing {
	l := &Listing{Name: "Lake House", Type: TypeSale, UserRef: owner, RegularPrice: 1000}
	l.ID = uuid.New()
	return l
}

func validCreateRequest() CreateListingRequest {
	return CreateListingRequest{
		Name:         "Lake House",
		Description:  "Quiet",
		Address:      "1 Lake Rd",
		RegularPrice: 1000,
		Bathrooms:    1,
		Bedrooms:     2,
		Type:         "sale",
	}
}

func TestCreateListing_DefaultsOwnerToActor(t *testing.T) {
	svc, repo, idx := newTestService()
	actor := uuid.New()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *Listing) bool {
		return l.UserRef == actor && l.ImageURLs != nil
	})).Return(nil).Once()
	idx.On("Index", mock.Anything, mock.AnythingOfType("*listing.Listing")).Return(nil).Once()

	l, err := svc.CreateListing(context.Background(), actor, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, actor, l.UserRef)
	repo.AssertExpectations(t)
	idx.AssertExpectations(t)
}

func TestCreateListing_ForeignOwnerRejected(t *testing.T) {
	svc, repo, _ := newTestService()
	req := validCreateRequest()
	req.UserRef = uuid.NewString()

	_, err := svc.CreateListing(context.Background(), uuid.New(), req)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "You can only create listings for your own account!", apiErr.Message)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateListing_IndexFailureIsNotFatal(t *testing.T) {
	svc, repo, idx := newTestService()
	actor := uuid.New()
	req := validCreateRequest()
	req.UserRef = actor.String()

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	idx.On("Index", mock.Anything, mock.Anything).Return(errors.New("es down"))

	_, err := svc.CreateListing(context.Background(), actor, req)
	assert.NoError(t, err)
}

func TestCreateListing_Conflict(t *testing.T) {
	svc, repo, idx := newTestService()
	repo.On("Create", mock.Anything, mock.Anything).Return(errDuplicateName)

	_, err := svc.CreateListing(context.Background(), uuid.New(), validCreateRequest())
	assert.True(t, errors.Is(err, common.ErrConflict))
	idx.AssertNotCalled(t, "Index", mock.Anything, mock.Anything)
}

func TestDeleteListing(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	t.Run("not found", func(t *testing.T) {
		svc, repo, _ := newTestService()
		id := uuid.New()
		repo.On("FindByID", mock.Anything, id).Return(nil, common.ErrNotFound.WithMessage("Listing not found!"))

		err := svc.DeleteListing(context.Background(), owner, id)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "Listing not found!", apiErr.Message)
	})

	t.Run("stranger", func(t *testing.T) {
		svc, repo, _ := newTestService()
		l := ownedListing(owner)
		repo.On("FindByID", mock.Anything, l.ID).Return(l, nil)

		err := svc.DeleteListing(context.Background(), stranger, l.ID)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "You can only delete your own listings!", apiErr.Message)
		repo.AssertNotCalled(t, "DeleteOwned", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("owner", func(t *testing.T) {
		svc, repo, idx := newTestService()
		l := ownedListing(owner)
		repo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
		repo.On("DeleteOwned", mock.Anything, l.ID, owner).Return(nil)
		idx.On("Remove", mock.Anything, l.ID).Return(nil)

		require.NoError(t, svc.DeleteListing(context.Background(), owner, l.ID))
		idx.AssertExpectations(t)
	})

	t.Run("deleted concurrently", func(t *testing.T) {
		svc, repo, _ := newTestService()
		l := ownedListing(owner)
		repo.On("FindByID", mock.Anything, l.ID).Return(l, nil).Once()
		repo.On("DeleteOwned", mock.Anything, l.ID, owner).Return(ErrNoOwnedMatch)
		repo.On("FindByID", mock.Anything, l.ID).Return(nil, common.ErrNotFound.WithMessage("Listing not found!")).Once()

		err := svc.DeleteListing(context.Background(), owner, l.ID)
		assert.True(t, errors.Is(err, common.ErrNotFound))
	})
}

func TestUpdateListing(t *testing.T) {
	owner := uuid.New()
	name := "Renamed"
	req := UpdateListingRequest{Name: &name}

	t.Run("owner", func(t *testing.T) {
		svc, repo, idx := newTestService()
		l := ownedListing(owner)
		updated := *l
		updated.Name = name
		repo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
		repo.On("UpdateOwned", mock.Anything, l.ID, owner, req.Patch()).Return(&updated, nil)
		idx.On("Index", mock.Anything, &updated).Return(nil)

		got, err := svc.UpdateListing(context.Background(), owner, l.ID, req)
		require.NoError(t, err)
		assert.Equal(t, name, got.Name)
	})

	t.Run("stranger", func(t *testing.T) {
		svc, repo, _ := newTestService()
		l := ownedListing(owner)
		repo.On("FindByID", mock.Anything, l.ID).Return(l, nil)

		_, err := svc.UpdateListing(context.Background(), uuid.New(), l.ID, req)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, "You can only update your own listings!", apiErr.Message)
	})

	t.Run("ownership changed between read and write", func(t *testing.T) {
		svc, repo, _ := newTestService()
		l := ownedListing(owner)
		moved := *l
		moved.UserRef = uuid.New()
		repo.On("FindByID", mock.Anything, l.ID).Return(l, nil).Once()
		repo.On("UpdateOwned", mock.Anything, l.ID, owner, req.Patch()).Return(nil, ErrNoOwnedMatch)
		repo.On("FindByID", mock.Anything, l.ID).Return(&moved, nil).Once()

		_, err := svc.UpdateListing(context.Background(), owner, l.ID, req)
		assert.True(t, errors.Is(err, common.ErrForbidden))
	})
}

func TestSearchListings_NormalizesParams(t *testing.T) {
	svc, repo, _ := newTestService()
	want := Query{
		Offer:     BoolFilter{true},
		Furnished: BoolFilter{false, true},
		Parking:   BoolFilter{false, true},
		Types:     []ListingType{TypeRent, TypeSale},
		Sort:      SortSpec{Field: "createdAt", Descending: true},
		Limit:     9,
	}
	repo.On("Search", mock.Anything, want).Return([]Listing{}, nil)

	got, err := svc.SearchListings(context.Background(), SearchParams{Offer: "true", Limit: "nope"})
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertExpectations(t)
}
