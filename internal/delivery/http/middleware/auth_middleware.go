package middleware

import (
	"errors"
	"net/http"
	"strings"

	"inquiry-backend/internal/delivery/http/response"
	"inquiry-backend/internal/domain"
	"inquiry-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// AdminAuth requires a staff bearer token issued by AdminUsecase.Login
func AdminAuth(adminUC domain.AdminUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if authHeader == "" || tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		name, err := adminUC.ParseToken(tokenString)
		if err != nil {
			code, msg := http.StatusUnauthorized, "Invalid token"
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				code, msg = appErr.Code, appErr.Message
			}
			response.Error(c, code, msg, nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyAdminName), name)
		c.Set(string(domain.KeyAdminRole), "admin")
		c.Next()
	}
}
