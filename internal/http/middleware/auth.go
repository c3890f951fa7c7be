package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-catalog/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextLoginKey = "login"
	ContextRoleKey  = "role"
)

// TokenParser проверяет access токен и возвращает логин и роль.
type TokenParser interface {
	ParseAccess(token string) (string, string, error)
}

// AuthMiddleware проверяет JWT access токен. Если required=false, запрос без токена
// проходит анонимно, но переданный невалидный токен всё равно отклоняется.
func AuthMiddleware(tokens TokenParser, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			if required {
				abort(c, apperror.ErrUnauthorized)
				return
			}
			c.Next()
			return
		}

		login, role, err := tokens.ParseAccess(raw)
		if err != nil || login == "" {
			abort(c, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "токен невалиден"))
			return
		}

		c.Set(ContextLoginKey, login)
		c.Set(ContextRoleKey, role)
		c.Request = c.Request.WithContext(service.WithLogin(c.Request.Context(), login))
		c.Next()
	}
}

// bearerToken берёт токен из заголовка Authorization, а для WebSocket из параметра token.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("token")
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
