// Package goroutine запускает фоновые горутины, не роняя процесс на panic.
package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/metrics"
)

// RecoveryHandler перехватывает panic в именованных горутинах.
type RecoveryHandler struct {
	log func() logrus.FieldLogger
}

// NewRecoveryHandler создаёт обработчик с заданным логгером.
func NewRecoveryHandler(log logrus.FieldLogger) *RecoveryHandler {
	return &RecoveryHandler{log: func() logrus.FieldLogger { return log }}
}

// Go запускает fn. name попадает в лог и в метрику паник.
func (rh *RecoveryHandler) Go(name string, fn func()) {
	go rh.run(name, fn)
}

// GoWithContext запускает fn с контекстом.
func (rh *RecoveryHandler) GoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go rh.run(name, func() { fn(ctx) })
}

func (rh *RecoveryHandler) run(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			metrics.GoroutinePanics.WithLabelValues(name).Inc()
			rh.log().WithFields(logrus.Fields{
				"goroutine": name,
				"panic":     r,
				"stack":     string(debug.Stack()),
			}).Error("panic в горутине")
		}
	}()
	fn()
}

// DefaultRecoveryHandler пишет в логгер приложения. Логгер берётся в момент паники,
// так что обработчик создаётся до logger.Init.
var DefaultRecoveryHandler = &RecoveryHandler{log: func() logrus.FieldLogger { return logger.L() }}

// SafeGo запускает горутину через DefaultRecoveryHandler.
func SafeGo(name string, fn func()) {
	DefaultRecoveryHandler.Go(name, fn)
}

// SafeGoWithContext запускает горутину с контекстом через DefaultRecoveryHandler.
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	DefaultRecoveryHandler.GoWithContext(ctx, name, fn)
}
