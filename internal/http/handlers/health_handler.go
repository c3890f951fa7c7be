package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-catalog/internal/logger"
)

// Pinger — то, что нужно health check от пула соединений.
type Pinger interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// CheckFunc — дополнительная проверка зависимости, например хранилища файлов.
type CheckFunc func(ctx context.Context) error

// HealthHandler отвечает на GET /health.
type HealthHandler struct {
	db     Pinger
	checks map[string]CheckFunc
}

// NewHealthHandler создаёт health handler поверх пула соединений.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, checks: make(map[string]CheckFunc)}
}

// WithCheck добавляет именованную проверку. Её ошибка делает сервис unhealthy.
func (h *HealthHandler) WithCheck(name string, check CheckFunc) *HealthHandler {
	h.checks[name] = check
	return h
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"database": "healthy"}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("health: база недоступна")
		checks["database"] = "unhealthy"
		healthy = false
	}

	stats := h.db.Stats()
	checks["connection_pool"] = "healthy"
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
		checks["connection_pool"] = "warning: pool exhausted"
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		checks[name] = "healthy"
		if err := h.checks[name](ctx); err != nil {
			logger.FromContext(ctx).WithError(err).WithField("check", name).Warn("health: проверка не прошла")
			checks[name] = "unhealthy"
			healthy = false
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}
