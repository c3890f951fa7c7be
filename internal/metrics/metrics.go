// Package metrics объявляет метрики Prometheus сервиса каталога.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "freelance_catalog"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Количество HTTP запросов по маршруту и статусу.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Длительность обработки HTTP запросов.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	EntityChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entity_changes_total",
		Help:      "Успешные изменения сущностей каталога.",
	}, []string{"entity", "action"})

	UploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "files",
		Name:      "uploaded_bytes_total",
		Help:      "Объём загруженных файлов.",
	})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "clients",
		Help:      "Подключённые клиенты ленты изменений.",
	})

	GoroutinePanics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "goroutine_panics_total",
		Help:      "Перехваченные panic в фоновых горутинах.",
	}, []string{"goroutine"})
)
