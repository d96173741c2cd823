// File: internal/middleware/auth.go
package middleware

import (
	"context"

	"estate_backend/internal/common"
	"estate_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionResolver turns a raw access token into the id of the user it was
// issued to. It returns an error for tokens that are malformed, expired,
// signed with another key or revoked.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

// AuthMiddleware authenticates requests from the access token cookie.
// A missing cookie is 401; a cookie that does not resolve is 403.
func AuthMiddleware(resolver SessionResolver, cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.CookieName)
		if err != nil || token == "" {
			logger.Debug("Access token cookie missing", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrUnauthorized)
			return
		}

		userID, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.Debug("Access token rejected", zap.Error(err))
			common.RespondWithError(c, common.ErrInvalidToken)
			return
		}

		c.Set(common.UserIDKey, userID)
		c.Set(common.UserClaimsKey, token)
		c.Next()
	}
}

// GetUserIDFromContext retrieves the user ID from the Gin context.
// Returns uuid.Nil if not found or not a UUID.
func GetUserIDFromContext(c *gin.Context) uuid.UUID {
	val, exists := c.Get(common.UserIDKey)
	if !exists {
		return uuid.Nil
	}
	userID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// GetTokenFromContext returns the raw access token accepted by AuthMiddleware.
func GetTokenFromContext(c *gin.Context) string {
	return c.GetString(common.UserClaimsKey)
}
