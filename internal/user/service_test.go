package user

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"estate_backend/internal/common"
	"estate_backend/internal/config"
	"estate_backend/internal/listing"
	"estate_backend/internal/platform/crypto"
	"estate_backend/internal/platform/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type UserServiceSuite struct {
	suite.Suite
	repo     Repository
	listings listing.Repository
	cfg      *config.Config
	svc      Service
	ctx      context.Context
}

func (s *UserServiceSuite) SetupTest() {
	db, err := database.OpenInMemory(zap.NewNop(), &User{}, &listing.Listing{})
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.repo = NewGORMRepository(db)
	s.listings = listing.NewGORMRepository(db)
	s.cfg = &config.Config{UserDeletePolicy: config.DeletePolicyOrphan}
	s.svc = NewService(s.repo, s.listings, listing.NewIndexer(nil, zap.NewNop()), s.cfg, zap.NewNop())
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) createUser(name string) *User {
	hash, err := crypto.HashPassword("secret")
	s.Require().NoError(err)
	u := &User{Username: name, Email: name + "@Example.com", Password: hash}
	s.Require().NoError(s.repo.Create(s.ctx, u))
	return u
}

func (s *UserServiceSuite) createListing(owner uuid.UUID, name string) *listing.Listing {
	l := &listing.Listing{Name: name, Description: "d", Address: "a", RegularPrice: 1, Bedrooms: 1, Bathrooms: 1, Type: listing.TypeRent, UserRef: owner, ImageURLs: []string{}}
	s.Require().NoError(s.listings.Create(s.ctx, l))
	return l
}

func (s *UserServiceSuite) TestCreate_NormalizesEmailAndEnforcesUniqueness() {
	u := s.createUser("alice")
	s.Equal("alice@example.com", u.Email)

	dup := &User{Username: "alice2", Email: "ALICE@example.com", Password: "x"}
	err := s.repo.Create(s.ctx, dup)
	s.True(errors.Is(err, common.ErrConflict))

	dup = &User{Username: "alice", Email: "other@example.com", Password: "x"}
	err = s.repo.Create(s.ctx, dup)
	apiErr, ok := common.IsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusConflict, apiErr.StatusCode)
}

func (s *UserServiceSuite) TestGetUser() {
	u := s.createUser("bob")

	got, err := s.svc.GetUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("bob", got.Username)

	_, err = s.svc.GetUser(s.ctx, uuid.New())
	apiErr, ok := common.IsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusNotFound, apiErr.StatusCode)
	s.Equal("User not found!", apiErr.Message)
}

func (s *UserServiceSuite) TestUpdateUser_OwnAccount() {
	u := s.createUser("carol")
	newName := "caroline"
	newPassword := "n3w-pass"
	empty := ""

	got, err := s.svc.UpdateUser(s.ctx, u.ID, u.ID.String(), UpdateUserRequest{
		Username: &newName,
		Password: &newPassword,
		Avatar:   &empty,
	})
	s.Require().NoError(err)
	s.Equal("caroline", got.Username)

	stored, err := s.repo.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(crypto.CheckPassword(newPassword, stored.Password), "new password must be readable by sign-in")
	s.False(crypto.CheckPassword("secret", stored.Password))
}

func (s *UserServiceSuite) TestUpdateUser_Idempotent() {
	u := s.createUser("dave")
	name := "dave"

	first, err := s.svc.UpdateUser(s.ctx, u.ID, u.ID.String(), UpdateUserRequest{Username: &name})
	s.Require().NoError(err)
	second, err := s.svc.UpdateUser(s.ctx, u.ID, u.ID.String(), UpdateUserRequest{Username: &name})
	s.Require().NoError(err)

	s.Equal(first.Username, second.Username)
	s.Equal(first.Email, second.Email)
	s.Equal(first.Avatar, second.Avatar)
}

func (s *UserServiceSuite) TestUpdateUser_OtherAccountRefused() {
	u := s.createUser("erin")
	other := s.createUser("frank")
	name := "hijacked"

	_, err := s.svc.UpdateUser(s.ctx, u.ID, other.ID.String(), UpdateUserRequest{Username: &name})
	apiErr, ok := common.IsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusUnauthorized, apiErr.StatusCode)
	s.Equal("You can only update your own account!", apiErr.Message)

	stored, err := s.repo.FindByID(s.ctx, other.ID)
	s.Require().NoError(err)
	s.Equal("frank", stored.Username)
}

func (s *UserServiceSuite) TestUpdateUser_DuplicateEmail() {
	u := s.createUser("gina")
	s.createUser("hank")
	email := "hank@example.com"

	_, err := s.svc.UpdateUser(s.ctx, u.ID, u.ID.String(), UpdateUserRequest{Email: &email})
	s.True(errors.Is(err, common.ErrConflict))
}

func (s *UserServiceSuite) TestGetUserListings() {
	u := s.createUser("ivan")
	other := s.createUser("judy")
	s.createListing(u.ID, "mine")
	s.createListing(other.ID, "theirs")

	got, err := s.svc.GetUserListings(s.ctx, u.ID, u.ID.String())
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("mine", got[0].Name)

	_, err = s.svc.GetUserListings(s.ctx, u.ID, other.ID.String())
	apiErr, ok := common.IsAPIError(err)
	s.Require().True(ok)
	s.Equal("You can only view your own listings!", apiErr.Message)
}

func (s *UserServiceSuite) TestDeleteUser_OrphanPolicyKeepsListings() {
	u := s.createUser("kate")
	l := s.createListing(u.ID, "kept")

	s.Require().NoError(s.svc.DeleteUser(s.ctx, u.ID, u.ID.String()))

	_, err := s.repo.FindByID(s.ctx, u.ID)
	s.True(errors.Is(err, common.ErrNotFound))
	_, err = s.listings.FindByID(s.ctx, l.ID)
	s.NoError(err)
}

func (s *UserServiceSuite) TestDeleteUser_CascadePolicyRemovesListings() {
	s.cfg.UserDeletePolicy = config.DeletePolicyCascade
	u := s.createUser("liam")
	l := s.createListing(u.ID, "gone")

	s.Require().NoError(s.svc.DeleteUser(s.ctx, u.ID, u.ID.String()))

	_, err := s.listings.FindByID(s.ctx, l.ID)
	s.True(errors.Is(err, common.ErrNotFound))
}

type failingListingStore struct {
	listing.Repository
	deleteCalls int
}

func (f *failingListingStore) DeleteByOwner(context.Context, uuid.UUID) (int64, error) {
	f.deleteCalls++
	return 0, errors.New("listing store unavailable")
}

func (s *UserServiceSuite) TestDeleteUser_CascadeFailureLeavesUserDeleted() {
	s.cfg.UserDeletePolicy = config.DeletePolicyCascade
	store := &failingListingStore{Repository: s.listings}
	svc := NewService(s.repo, store, listing.NewIndexer(nil, zap.NewNop()), s.cfg, zap.NewNop())
	u := s.createUser("olga")
	l := s.createListing(u.ID, "stranded")

	s.Require().NoError(svc.DeleteUser(s.ctx, u.ID, u.ID.String()))
	s.Equal(1, store.deleteCalls)

	_, err := s.repo.FindByID(s.ctx, u.ID)
	s.True(errors.Is(err, common.ErrNotFound))
	// The listing is now an orphan for the audit job to pick up.
	_, err = s.listings.FindByID(s.ctx, l.ID)
	s.NoError(err)
}

func (s *UserServiceSuite) TestDeleteUser_MissingUserKeepsListings() {
	s.cfg.UserDeletePolicy = config.DeletePolicyCascade
	ghost := uuid.New()
	l := s.createListing(ghost, "untouched")

	err := s.svc.DeleteUser(s.ctx, ghost, ghost.String())
	s.True(errors.Is(err, common.ErrNotFound))

	_, err = s.listings.FindByID(s.ctx, l.ID)
	s.NoError(err)
}

func (s *UserServiceSuite) TestUpdateUser_EmptyPatchSkipsWrite() {
	u := s.createUser("pete")
	before, err := s.repo.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	blank := ""

	got, err := s.svc.UpdateUser(s.ctx, u.ID, u.ID.String(), UpdateUserRequest{Username: &blank})
	s.Require().NoError(err)
	s.Equal("pete", got.Username)

	after, err := s.repo.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(before.UpdatedAt.Equal(after.UpdatedAt))
}

func (s *UserServiceSuite) TestUpdateUser_PasswordOverByteLimit() {
	u := s.createUser("quinn")
	long := strings.Repeat("é", 40)

	_, err := s.svc.UpdateUser(s.ctx, u.ID, u.ID.String(), UpdateUserRequest{Password: &long})
	apiErr, ok := common.IsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusBadRequest, apiErr.StatusCode)
}

func (s *UserServiceSuite) TestDeleteUser_OtherAccountRefused() {
	u := s.createUser("mia")
	other := s.createUser("noah")

	err := s.svc.DeleteUser(s.ctx, u.ID, other.ID.String())
	s.True(errors.Is(err, common.ErrForbidden))

	_, err = s.repo.FindByID(s.ctx, other.ID)
	s.NoError(err)
}

func TestToPublic_HasNoPassword(t *testing.T) {
	u := &User{Username: "x", Email: "x@y.z", Password: "hash", Avatar: "a"}
	p := ToPublic(u)
	require.NotNil(t, p)
	assert.Equal(t, "a", p.Avatar)
	assert.Equal(t, "photo", ToPublicWithAvatar(u, "photo").Avatar)
	assert.Equal(t, "a", ToPublicWithAvatar(u, "").Avatar)
	assert.Nil(t, ToPublic(nil))
}
