// server/internal/api/middleware/error.go
package middleware

import (
	"net/http"

	"coffee-os-api-server/internal/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serverErrorMessage = "Server side error"

// ErrorHandler renders the last error pushed with c.Error. Operational errors
// keep their status and message; anything else is logged and hidden behind a 500.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if appErr, ok := apperror.As(err); ok {
			c.JSON(appErr.StatusCode, gin.H{"status": appErr.Status(), "message": appErr.Message})
			return
		}

		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(ContextRequestID)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": serverErrorMessage})
	}
}

// Recovery turns panics into the same 500 body ErrorHandler uses.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": serverErrorMessage})
	})
}
