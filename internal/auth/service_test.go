package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"estate_backend/internal/common"
	"estate_backend/internal/platform/database"
	"estate_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type AuthServiceSuite struct {
	suite.Suite
	users user.Repository
	svc   Service
	ctx   context.Context
}

func (s *AuthServiceSuite) SetupTest() {
	db, err := database.OpenInMemory(zap.NewNop(), &user.User{})
	s.Require().NoError(err)
	cfg := testConfig()

	s.ctx = context.Background()
	s.users = user.NewGORMRepository(db)
	s.svc = NewService(s.users, NewJWTService(cfg, zap.NewNop()), NewInMemoryBlocklistService(0), cfg, zap.NewNop())
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) signup(username, email, password string) {
	s.Require().NoError(s.svc.Signup(s.ctx, user.SignupRequest{Username: username, Email: email, Password: password}))
}

func (s *AuthServiceSuite) TestSignupThenSignin() {
	s.signup("alice", "Alice@Example.com", "pw123456")

	session, err := s.svc.Signin(s.ctx, SigninRequest{Email: "alice@example.com", Password: "pw123456"})
	s.Require().NoError(err)
	s.NotEmpty(session.Token)
	s.Equal("alice", session.User.Username)
	s.Equal("https://example.com/default.png", session.User.Avatar)

	id, err := s.svc.Resolve(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(session.User.ID, id)
}

func (s *AuthServiceSuite) TestSignup_Duplicates() {
	s.signup("bob", "bob@example.com", "pw")

	err := s.svc.Signup(s.ctx, user.SignupRequest{Username: "bob", Email: "new@example.com", Password: "pw"})
	s.True(errors.Is(err, common.ErrConflict))

	err = s.svc.Signup(s.ctx, user.SignupRequest{Username: "bobby", Email: "BOB@example.com", Password: "pw"})
	s.True(errors.Is(err, common.ErrConflict))
}

func (s *AuthServiceSuite) TestSignin_WrongCredentialsIndistinguishable() {
	s.signup("carol", "carol@example.com", "right")

	_, unknownErr := s.svc.Signin(s.ctx, SigninRequest{Email: "nobody@example.com", Password: "right"})
	_, wrongErr := s.svc.Signin(s.ctx, SigninRequest{Email: "carol@example.com", Password: "wrong"})

	for _, err := range []error{unknownErr, wrongErr} {
		apiErr, ok := common.IsAPIError(err)
		s.Require().True(ok)
		s.Equal(http.StatusNotFound, apiErr.StatusCode)
		s.Equal("Wrong credentials!", apiErr.Message)
	}
	s.Equal(unknownErr.Error(), wrongErr.Error())
}

func (s *AuthServiceSuite) TestGoogle_NewUser() {
	session, err := s.svc.Google(s.ctx, GoogleRequest{Name: "Dana Scully", Email: "dana@example.com", Photo: "https://img/dana.png"})
	s.Require().NoError(err)
	s.Regexp(`^danascully[0-9a-z]{4}$`, session.User.Username)
	s.Equal("https://img/dana.png", session.User.Avatar)

	stored, err := s.users.FindByEmail(s.ctx, "dana@example.com")
	s.Require().NoError(err)
	s.NotEmpty(stored.Password)
	s.Equal(session.User.ID, stored.ID)
}

func (s *AuthServiceSuite) TestGoogle_ExistingUserUsesPhoto() {
	s.signup("fox", "fox@example.com", "pw")

	session, err := s.svc.Google(s.ctx, GoogleRequest{Name: "Fox Mulder", Email: "fox@example.com", Photo: "https://img/fox.png"})
	s.Require().NoError(err)
	s.Equal("fox", session.User.Username)
	s.Equal("https://img/fox.png", session.User.Avatar)

	stored, err := s.users.FindByEmail(s.ctx, "fox@example.com")
	s.Require().NoError(err)
	s.Equal("https://example.com/default.png", stored.Avatar, "the stored avatar is not rewritten")
}

func (s *AuthServiceSuite) TestRevoke() {
	s.signup("gus", "gus@example.com", "pw")
	session, err := s.svc.Signin(s.ctx, SigninRequest{Email: "gus@example.com", Password: "pw"})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Revoke(s.ctx, session.Token))
	_, err = s.svc.Resolve(s.ctx, session.Token)
	s.Error(err)

	s.NoError(s.svc.Revoke(s.ctx, "not-a-token"))
	s.NoError(s.svc.Revoke(s.ctx, ""))
}

// mockUserRepository is a mock type for user.Repository
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, id uuid.UUID, patch user.Patch) (*user.User, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestGoogle_RetriesUsernameCollision(t *testing.T) {
	repo := new(mockUserRepository)
	cfg := testConfig()
	svc := NewService(repo, NewJWTService(cfg, zap.NewNop()), NewInMemoryBlocklistService(0), cfg, zap.NewNop())
	notFound := common.ErrNotFound.WithMessage("User not found!")
	conflict := common.ErrConflict.WithMessage("Username or email already exists!")

	repo.On("FindByEmail", mock.Anything, "eve@example.com").Return(nil, notFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(conflict).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil).Once()

	session, err := svc.Google(context.Background(), GoogleRequest{Name: "Eve", Email: "eve@example.com"})
	require.NoError(t, err)
	require.Equal(t, cfg.DefaultAvatarURL, session.User.Avatar)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestGoogle_GivesUpAfterRetries(t *testing.T) {
	repo := new(mockUserRepository)
	cfg := testConfig()
	svc := NewService(repo, NewJWTService(cfg, zap.NewNop()), NewInMemoryBlocklistService(0), cfg, zap.NewNop())

	repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, common.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(common.ErrConflict)

	_, err := svc.Google(context.Background(), GoogleRequest{Name: "Eve", Email: "eve@example.com"})
	require.True(t, errors.Is(err, common.ErrConflict))
	repo.AssertNumberOfCalls(t, "Create", usernameCreateRetries)
}
