// File: internal/listing/handler.go
package listing

import (
	"errors"
	"net/http"

	"estate_backend/internal/common"
	"estate_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for listing handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new listing handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for listing operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	listingGroup := router.Group("/listing")
	{
		listingGroup.GET("/get", h.searchListings)
		listingGroup.GET("/get/:id", h.getListing)

		authed := listingGroup.Group("")
		authed.Use(authMW)
		{
			authed.POST("/create", h.createListing)
			authed.POST("/update/:id", h.updateListing)
			authed.DELETE("/delete/:id", h.deleteListing)
		}
	}
}

func (h *Handler) createListing(c *gin.Context) {
	actor := middleware.GetUserIDFromContext(c)

	var req CreateListingRequest
	if !h.bind(c, &req) {
		return
	}

	listing, err := h.service.CreateListing(c.Request.Context(), actor, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, listing)
}

func (h *Handler) getListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	listing, err := h.service.GetListing(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, listing)
}

func (h *Handler) searchListings(c *gin.Context) {
	var params SearchParams
	// All fields are strings, so binding cannot fail on malformed values.
	_ = c.ShouldBindQuery(&params)

	listings, err := h.service.SearchListings(c.Request.Context(), params)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, listings)
}

func (h *Handler) updateListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	actor := middleware.GetUserIDFromContext(c)

	// A missing listing is a 404 whatever the body holds.
	if _, err := h.service.GetListing(c.Request.Context(), id); err != nil {
		common.RespondWithError(c, err)
		return
	}

	var req UpdateListingRequest
	if !h.bind(c, &req) {
		return
	}

	listing, err := h.service.UpdateListing(c.Request.Context(), actor, id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, listing)
}

func (h *Handler) deleteListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	actor := middleware.GetUserIDFromContext(c)

	if err := h.service.DeleteListing(c.Request.Context(), actor, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondMessage(c, http.StatusOK, "Listing has been deleted!")
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Debug("Invalid listing payload", zap.Error(err))
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

// listingID parses the :id path parameter. An id that is not a UUID cannot
// name a stored listing, so it is reported as not found.
func listingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrNotFound.WithMessage("Listing not found!"))
		return uuid.Nil, false
	}
	return id, true
}
