package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-catalog/internal/http/response"
	"github.com/ignatzorin/freelance-catalog/internal/logger"
)

// ErrorHandler обрабатывает ошибки централизованно. Обработчики кладут ошибку
// через c.Error, здесь она превращается в ответ и заголовок error.<key>.
func ErrorHandler(alerts response.Alerts) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		logger.FromContext(c.Request.Context()).WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Debug("Request error")

		alerts.Failure(c, err)
		response.Error(c, err)
	}
}
