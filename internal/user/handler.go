// File: internal/user/handler.go
package user

import (
	"context"
	"errors"
	"net/http"

	"estate_backend/internal/common"
	"estate_backend/internal/config"
	"estate_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRevoker invalidates an access token before it expires.
type SessionRevoker interface {
	Revoke(ctx context.Context, token string) error
}

// Handler struct holds dependencies for user handlers.
type Handler struct {
	service Service
	revoker SessionRevoker
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service Service, revoker SessionRevoker, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		revoker: revoker,
		cfg:     cfg,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for user operations. Every route needs a session.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	userGroup := router.Group("/user")
	userGroup.Use(authMW)
	{
		userGroup.POST("/update/:id", h.updateUser)
		userGroup.DELETE("/delete/:id", h.deleteUser)
		userGroup.GET("/listings/:id", h.getUserListings)
		userGroup.GET("/:id", h.getUser)
	}
}

func (h *Handler) updateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Update user: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("Invalid request body: "+err.Error()))
		return
	}

	usr, err := h.service.UpdateUser(c.Request.Context(), middleware.GetUserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, usr)
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), middleware.GetUserIDFromContext(c), c.Param("id")); err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.revoker.Revoke(c.Request.Context(), middleware.GetTokenFromContext(c)); err != nil {
		h.logger.Warn("Failed to revoke session of deleted user", zap.Error(err))
	}
	middleware.ClearAccessCookie(c, h.cfg)
	common.RespondMessage(c, http.StatusOK, "User has been deleted!")
}

func (h *Handler) getUserListings(c *gin.Context) {
	listings, err := h.service.GetUserListings(c.Request.Context(), middleware.GetUserIDFromContext(c), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, listings)
}

func (h *Handler) getUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrNotFound.WithMessage("User not found!"))
		return
	}
	usr, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, usr)
}
