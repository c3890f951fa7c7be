package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/models"
	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-catalog/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений ленты изменений.
type WSHandler struct {
	hub      *ws.Hub
	entities map[string]struct{}
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. resources — сущности, на которые можно подписаться.
func NewWSHandler(hub *ws.Hub, allowedOrigins []string, resources ...models.Resource) *WSHandler {
	entities := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		entities[r.Name] = struct{}{}
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WSHandler{
		hub:      hub,
		entities: entities,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// Register вешает маршрут ленты изменений.
func (h *WSHandler) Register(api *gin.RouterGroup) {
	api.GET("/ws/changes", h.Handle)
}

// Handle обслуживает GET /api/ws/changes?entity=...
func (h *WSHandler) Handle(c *gin.Context) {
	entity := c.Query("entity")
	if entity != "" {
		if _, ok := h.entities[entity]; !ok {
			_ = c.Error(apperror.New(apperror.ErrCodeBadRequest, "неизвестная сущность "+entity).
				WithEntity(entity, apperror.KeyInvalidFilter))
			return
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту.
		logger.FromContext(c.Request.Context()).WithError(err).Debug("ws: upgrade не удался")
		return
	}

	client := ws.NewClient(conn, h.hub, entity)
	h.hub.Register(client)

	client.Run(c.Request.Context())
}
