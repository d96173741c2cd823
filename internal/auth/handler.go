// File: internal/auth/handler.go
package auth

import (
	"errors"
	"net/http"
	"time"

	"estate_backend/internal/common"
	"estate_backend/internal/config"
	"estate_backend/internal/middleware"
	"estate_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	service Service
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/signin", h.signin)
		authGroup.POST("/google", h.google)
		authGroup.GET("/signout", h.signout)
	}
}

func (h *Handler) signup(c *gin.Context) {
	var req user.SignupRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.Signup(c.Request.Context(), req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, common.MessageResponse{Success: true, Message: "User created successfully!"})
}

func (h *Handler) signin(c *gin.Context) {
	var req SigninRequest
	if !h.bind(c, &req) {
		return
	}
	session, err := h.service.Signin(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.startSession(c, session)
}

func (h *Handler) google(c *gin.Context) {
	var req GoogleRequest
	if !h.bind(c, &req) {
		return
	}
	session, err := h.service.Google(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.startSession(c, session)
}

// signout needs no valid session: whatever cookie is present is revoked and cleared.
func (h *Handler) signout(c *gin.Context) {
	if token, err := c.Cookie(h.cfg.CookieName); err == nil {
		if err := h.service.Revoke(c.Request.Context(), token); err != nil {
			h.logger.Warn("Failed to revoke token on signout", zap.Error(err))
		}
	}
	middleware.ClearAccessCookie(c, h.cfg)
	common.RespondMessage(c, http.StatusOK, "User has been logged out!")
}

func (h *Handler) startSession(c *gin.Context, session *Session) {
	middleware.SetAccessCookie(c, h.cfg, session.Token, time.Until(session.ExpiresAt))
	common.RespondOK(c, session.User)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Debug("Auth: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("Invalid request body: "+err.Error()))
		return false
	}
	return true
}
