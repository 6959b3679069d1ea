package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// TokenParser проверяет access токен и возвращает вызывающего пользователя.
type TokenParser interface {
	ParseAccess(token string) (entity.Actor, error)
}

// AuthMiddleware проверяет JWT access токен. Для websocket рукопожатия
// токен можно передать в query параметре token.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			response.Unauthorized(c, "требуется авторизация")
			return
		}

		actor, err := tokens.ParseAccess(raw)
		if err != nil || actor.ID == uuid.Nil {
			response.Unauthorized(c, "токен невалиден")
			return
		}

		c.Set(ContextUserIDKey, actor.ID)
		c.Set(ContextRoleKey, string(actor.Role))
		c.Next()
	}
}

// CurrentActor достаёт пользователя, которого положил AuthMiddleware.
func CurrentActor(c *gin.Context) (entity.Actor, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return entity.Actor{}, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return entity.Actor{}, false
	}
	return entity.Actor{ID: userID, Role: valueobject.Role(c.GetString(ContextRoleKey))}, true
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}
