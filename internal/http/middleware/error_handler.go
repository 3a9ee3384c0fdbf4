package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/response"
)

// ErrorHandler рендерит ошибки, добавленные через c.Error, если ответ ещё не отправлен.
// Внутренние ошибки маскируются в response.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		response.Error(c, c.Errors.Last().Err)
	}
}
