package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ignatzorin/freelance-catalog/internal/filter"
)

// CountCache хранит результаты count-запросов в памяти с TTL.
// Любое изменение сущности сбрасывает все её ключи и увеличивает её поколение:
// значение, посчитанное до сброса, в кеш уже не попадёт.
type CountCache struct {
	mu          sync.RWMutex
	entries     map[string]countEntry
	generations map[string]uint64
	ttl         time.Duration
	now         func() time.Time
}

type countEntry struct {
	value     int64
	expiresAt time.Time
}

// NewCountCache создаёт кеш. Просроченные записи вычищает Run.
func NewCountCache(ttl time.Duration) *CountCache {
	return &CountCache{
		entries:     make(map[string]countEntry),
		generations: make(map[string]uint64),
		ttl:         ttl,
		now:         time.Now,
	}
}

// Get возвращает значение, если оно ещё не просрочено.
func (c *CountCache) Get(key string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return 0, false
	}
	return entry.value, true
}

// Set сохраняет значение на ttl.
func (c *CountCache) Set(key string, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = countEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate удаляет все ключи сущности.
func (c *CountCache) Invalidate(entity string) {
	prefix := entity + ":"

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[entity]++
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// GetOrSet возвращает закешированное значение или считает его через fn.
// Если за время fn сущность изменилась, результат отдаётся, но не кешируется.
func (c *CountCache) GetOrSet(ctx context.Context, key string, fn func(ctx context.Context) (int64, error)) (int64, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	entity := entityOf(key)
	c.mu.RLock()
	gen := c.generations[entity]
	c.mu.RUnlock()

	value, err := fn(ctx)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[entity] == gen {
		c.entries[key] = countEntry{value: value, expiresAt: c.now().Add(c.ttl)}
	}
	return value, nil
}

func entityOf(key string) string {
	entity, _, _ := strings.Cut(key, ":")
	return entity
}

// Run периодически удаляет просроченные записи до отмены ctx.
func (c *CountCache) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *CountCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// CountCacheKey строит ключ вида "<entity>:<field>.<op>=<values>&...".
func CountCacheKey(entity string, criteria filter.Criteria) string {
	var b strings.Builder
	b.WriteString(entity)
	b.WriteByte(':')
	for i, cond := range criteria {
		if i > 0 {
			b.WriteByte('&')
		}
		fmt.Fprintf(&b, "%s.%s=%v", cond.Field.Name, cond.Operator, cond.Values)
	}
	return b.String()
}
