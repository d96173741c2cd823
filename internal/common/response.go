// File: internal/common/response.go
package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerKey is the gin context key under which the request logger is stored.
const LoggerKey = "logger"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// MessageResponse is the body of write operations that only report an outcome.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewErrorResponse renders an APIError in the wire format.
func NewErrorResponse(apiErr *APIError) ErrorResponse {
	return ErrorResponse{
		Success:    false,
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Details:    apiErr.Details,
	}
}

// RespondWithError sends a JSON error response and aborts the chain.
func RespondWithError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		if l, exists := c.Get(LoggerKey); exists {
			if logger, ok := l.(*zap.Logger); ok {
				logger.Error("Unhandled internal error being wrapped", zap.Error(err))
			}
		}
		apiErr = ErrInternalServer
	}

	c.AbortWithStatusJSON(apiErr.StatusCode, NewErrorResponse(apiErr))
}

// RespondOK sends a 200 response with data as the whole body.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 response with data as the whole body.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondMessage sends a bare JSON string, e.g. "User has been logged out!".
func RespondMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, message)
}
