package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/response"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

// ContextAdminKey — ключ gin.Context с логином администратора.
const ContextAdminKey = "admin"

// Authorizer проверяет access токен администратора.
type Authorizer interface {
	Authorize(token string) (string, error)
}

// AdminAuthMiddleware пропускает только запросы с валидным Bearer токеном администратора.
func AdminAuthMiddleware(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "authorization required")
			return
		}

		subject, err := auth.Authorize(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if apperror.CodeOf(err) == apperror.ErrCodeForbidden {
				response.Forbidden(c, "admin access required")
				return
			}
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextAdminKey, subject)
		c.Next()
	}
}
