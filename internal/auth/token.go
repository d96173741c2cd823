// File: internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"estate_backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenIssuer = "estate_backend"

// Claims is the payload of an access token.
type Claims struct {
	UserID uuid.UUID `json:"id"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access tokens.
type TokenService interface {
	GenerateAccessToken(userID uuid.UUID) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTService struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewJWTService creates a new HS256 JWT service.
func NewJWTService(cfg *config.Config, logger *zap.Logger) TokenService {
	return &JWTService{cfg: cfg, logger: logger.Named("jwt")}
}

func (s *JWTService) GenerateAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(s.cfg.JWTAccessTokenExpiry)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("could not sign access token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// ValidateToken validates a JWT token and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.UserID == uuid.Nil || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
