package logger

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
// В development используется текстовый формат, в остальных окружениях JSON.
func Init(level, env string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if env == "development" {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// L возвращает логгер приложения. До Init логи уходят в никуда, чтобы тесты не шумели.
func L() *logrus.Logger {
	if Log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		Log = silent
	}
	return Log
}

// WithRequestID кладёт идентификатор запроса в контекст.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// FromContext возвращает запись лога с request_id, если он есть в контексте.
func FromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(L())
	if ctx == nil {
		return entry
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return entry.WithField("request_id", id)
	}
	return entry
}
