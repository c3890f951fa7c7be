package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
)

// ContextIDKey — ключ, под которым IDParam кладёт разобранный id.
const ContextIDKey = "entityID"

// IDParam проверяет, что параметр с указанным именем является положительным целым id.
// Использование: group.GET("/:id", IDParam("id", "category"), handler.Get)
func IDParam(paramName, entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			abort(c, apperror.BadRequestAlert(entity, apperror.KeyIDNull, "параметр "+paramName+" обязателен"))
			return
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			abort(c, apperror.BadRequestAlert(entity, apperror.KeyIDInvalid, "параметр "+paramName+" должен быть положительным числом"))
			return
		}

		c.Set(ContextIDKey, id)
		c.Next()
	}
}

// EntityID возвращает id, разобранный IDParam.
func EntityID(c *gin.Context) int64 {
	return c.GetInt64(ContextIDKey)
}
