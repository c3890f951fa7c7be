package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/metrics"
)

// ChangeEvent — уведомление об изменении сущности каталога.
type ChangeEvent struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

// Hub рассылает события изменений всем подписанным WebSocket клиентам.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	ctx        context.Context
	log        *logrus.Entry
}

type message struct {
	entity  string
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		ctx:        ctx,
		log:        logger.L().WithField("component", "ws_hub"),
	}
}

// Run запускает главный цикл хаба. Завершается вместе с контекстом.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// PublishChange отправляет событие вида {"type":"<entity>.<action>","data":{...}}.
// Если очередь переполнена, событие отбрасывается: запись в базу уже состоялась.
func (h *Hub) PublishChange(entity, action string, id int64) {
	payload := map[string]any{
		"type": entity + "." + action,
		"data": ChangeEvent{Entity: entity, Action: action, ID: id},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).Error("ws: не удалось сериализовать сообщение")
		return
	}

	select {
	case h.broadcast <- message{entity: entity, payload: raw}:
	default:
		h.log.WithFields(logrus.Fields{"entity": entity, "action": action, "id": id}).
			Warn("ws: очередь событий переполнена, событие пропущено")
	}
}

// ClientCount возвращает количество подключённых клиентов.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	metrics.WSClients.Set(float64(len(h.clients)))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
	metrics.WSClients.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]struct{})
	metrics.WSClients.Set(0)
	h.mu.Unlock()

	for _, c := range clients {
		c.closeConn()
	}
}

func (h *Hub) send(msg message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.subscribed(msg.entity) {
			continue
		}
		select {
		case client.send <- msg.payload:
		default:
			// Медленный клиент: отключаем один раз, чтобы не копить очередь.
			if client.markClosing() {
				go client.Close()
			}
		}
	}
}

func (e ChangeEvent) String() string {
	return fmt.Sprintf("%s.%s#%d", e.Entity, e.Action, e.ID)
}
