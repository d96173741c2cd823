// File: internal/middleware/error.go
package middleware

import (
	"net/http"

	"estate_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders errors attached with c.Error and turns panics into the
// standard 500 body.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Recovered from panic",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(common.RequestIDKey)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, common.NewErrorResponse(common.ErrInternalServer))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		apiErr, ok := common.IsAPIError(err)
		if !ok {
			logger.Error("Unhandled application error",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(common.RequestIDKey)),
			)
			apiErr = common.ErrInternalServer
		}
		c.AbortWithStatusJSON(apiErr.StatusCode, common.NewErrorResponse(apiErr))
	}
}

// NoRoute answers unknown endpoints with the standard error body.
func NoRoute(c *gin.Context) {
	common.RespondWithError(c, common.ErrNotFound.WithMessage("The requested endpoint does not exist."))
}
