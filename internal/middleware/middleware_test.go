package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"estate_backend/internal/common"
	"estate_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubResolver struct {
	valid map[string]uuid.UUID
}

func (s stubResolver) Resolve(_ context.Context, token string) (uuid.UUID, error) {
	if id, ok := s.valid[token]; ok {
		return id, nil
	}
	return uuid.Nil, errors.New("bad token")
}

func setupRouter(resolver SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{CookieName: "access_token", GinMode: gin.TestMode}
	logger := zap.NewNop()

	r := gin.New()
	r.Use(ZapLogger(logger, cfg), ErrorHandler(logger))
	r.NoRoute(NoRoute)
	r.GET("/me", AuthMiddleware(resolver, cfg, logger), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserIDFromContext(c), "token": GetTokenFromContext(c)})
	})
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/fail", func(c *gin.Context) { _ = c.Error(errors.New("db down")) })
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	r := setupRouter(stubResolver{valid: map[string]uuid.UUID{"good": userID}})

	t.Run("missing cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeError(t, w)
		assert.False(t, body.Success)
		assert.Equal(t, 401, body.StatusCode)
		assert.Equal(t, "Unauthorized", body.Message)
	})

	t.Run("bad token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "forged"})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Forbidden", decodeError(t, w).Message)
	})

	t.Run("valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "good"})
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["id"])
		assert.Equal(t, "good", body["token"])
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})
}

func TestErrorHandler(t *testing.T) {
	r := setupRouter(stubResolver{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decodeError(t, w).Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 500, decodeError(t, w).StatusCode)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decodeError(t, w).Success)
}

func TestGetUserIDFromContext_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uuid.Nil, GetUserIDFromContext(c))
	c.Set(common.UserIDKey, "not-a-uuid")
	assert.Equal(t, uuid.Nil, GetUserIDFromContext(c))
}
