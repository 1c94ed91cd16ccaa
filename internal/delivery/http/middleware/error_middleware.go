package middleware

import (
	"errors"
	"net/http"

	"inquiry-backend/internal/delivery/http/response"
	"inquiry-backend/pkg/apperror"
	"inquiry-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
				logger.Log.Error("request failed",
					"request_id", c.GetString(RequestIDKey),
					"path", c.FullPath(),
					"status", appErr.Code,
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
			return
		}

		// never expose internal error details to clients
		logger.Log.Error("internal server error",
			"request_id", c.GetString(RequestIDKey),
			"path", c.FullPath(),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
