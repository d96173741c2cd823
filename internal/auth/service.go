// File: internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"estate_backend/internal/common"
	"estate_backend/internal/config"
	"estate_backend/internal/platform/crypto"
	"estate_backend/internal/user"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	usernameSuffixLen     = 4
	generatedPasswordLen  = 16
	usernameCreateRetries = 3
)

// errWrongCredentials is returned for both an unknown email and a bad password.
var errWrongCredentials = common.ErrNotFound.WithMessage("Wrong credentials!")

// Service implements signup, the two sign-in flows and session handling.
type Service interface {
	Signup(ctx context.Context, req user.SignupRequest) error
	Signin(ctx context.Context, req SigninRequest) (*Session, error)
	Google(ctx context.Context, req GoogleRequest) (*Session, error)
	// Resolve returns the user a live token was issued to.
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
	// Revoke blocks a token until it expires. Unparseable tokens are ignored.
	Revoke(ctx context.Context, token string) error
}

type ServiceImplementation struct {
	users     user.Repository
	tokens    TokenService
	blocklist TokenBlocklistService
	cfg       *config.Config
	logger    *zap.Logger
}

// NewService creates the auth service.
func NewService(users user.Repository, tokens TokenService, blocklist TokenBlocklistService, cfg *config.Config, logger *zap.Logger) Service {
	return &ServiceImplementation{
		users:     users,
		tokens:    tokens,
		blocklist: blocklist,
		cfg:       cfg,
		logger:    logger.Named("auth_service"),
	}
}

// Signup hashes the password and creates the user. Duplicate usernames or
// emails surface as the store's conflict error.
func (s *ServiceImplementation) Signup(ctx context.Context, req user.SignupRequest) error {
	hash, err := crypto.HashPassword(req.Password)
	if errors.Is(err, crypto.ErrPasswordTooLong) {
		return err
	}
	if err != nil {
		s.logger.Error("Failed to hash password during signup", zap.Error(err))
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u := &user.User{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		Password: hash,
		Avatar:   s.cfg.DefaultAvatarURL,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}
	s.logger.Info("User signed up", zap.String("user_id", u.ID.String()))
	return nil
}

func (s *ServiceImplementation) Signin(ctx context.Context, req SigninRequest) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errWrongCredentials
		}
		return nil, err
	}
	if !crypto.CheckPassword(req.Password, u.Password) {
		s.logger.Debug("Password mismatch on sign-in", zap.String("user_id", u.ID.String()))
		return nil, errWrongCredentials
	}
	return s.newSession(u.ID, user.ToPublic(u))
}

// Google signs in with a client-supplied Google profile. An unknown email gets
// a fresh account with a generated username and an unusable random password.
func (s *ServiceImplementation) Google(ctx context.Context, req GoogleRequest) (*Session, error) {
	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return s.newSession(existing.ID, user.ToPublicWithAvatar(existing, req.Photo))
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	password, err := crypto.RandomBase36(generatedPasswordLen)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	avatar := req.Photo
	if avatar == "" {
		avatar = s.cfg.DefaultAvatarURL
	}

	var created *user.User
	for attempt := 1; attempt <= usernameCreateRetries; attempt++ {
		username, err := GenerateUsername(req.Name)
		if err != nil {
			return nil, err
		}
		u := &user.User{Username: username, Email: req.Email, Password: hash, Avatar: avatar}
		err = s.users.Create(ctx, u)
		if err == nil {
			created = u
			break
		}
		if !errors.Is(err, common.ErrConflict) || attempt == usernameCreateRetries {
			return nil, err
		}
		// The email may have been taken concurrently; only a username clash is worth a retry.
		if _, findErr := s.users.FindByEmail(ctx, req.Email); findErr == nil {
			return nil, err
		}
		s.logger.Debug("Generated username taken, retrying", zap.String("username", username), zap.Int("attempt", attempt))
	}

	s.logger.Info("User created from Google profile", zap.String("user_id", created.ID.String()))
	return s.newSession(created.ID, user.ToPublic(created))
}

func (s *ServiceImplementation) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	revoked, err := s.blocklist.IsBlocklisted(ctx, claims.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check blocklist: %w", err)
	}
	if revoked {
		return uuid.Nil, errors.New("token has been revoked")
	}
	return claims.UserID, nil
}

func (s *ServiceImplementation) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}
	if err := s.blocklist.AddToBlocklist(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Debug("Token revoked", zap.String("user_id", claims.UserID.String()))
	return nil
}

func (s *ServiceImplementation) newSession(userID uuid.UUID, view *user.PublicUser) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: view}, nil
}

// GenerateUsername builds a username from a display name: the slug with its
// separators removed, followed by a random base36 suffix.
func GenerateUsername(displayName string) (string, error) {
	base := strings.ReplaceAll(slug.Make(displayName), "-", "")
	if base == "" {
		base = "user"
	}
	suffix, err := crypto.RandomBase36(usernameSuffixLen)
	if err != nil {
		return "", fmt.Errorf("generate username suffix: %w", err)
	}
	return base + suffix, nil
}
