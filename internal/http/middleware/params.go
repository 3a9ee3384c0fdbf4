package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/response"
	"github.com/ignatzorin/sanmateo-reports/internal/reportid"
)

// UUIDValidator проверяет, что параметр является валидным UUID.
// Использование: router.GET("/drafts/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			response.BadRequest(c, paramName+" must be a valid UUID")
			return
		}
		c.Next()
	}
}

// ReportIDValidator отсекает заведомо невалидные номера отчётов в админских маршрутах.
// Публичный поиск его не использует: там неверный номер — просто «не найдено».
func ReportIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !reportid.Valid(reportid.Normalize(c.Param(paramName))) {
			response.BadRequest(c, paramName+" must look like SM-XXXX-XXXX")
			return
		}
		c.Next()
	}
}
