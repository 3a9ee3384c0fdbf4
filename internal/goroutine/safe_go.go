package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/sanmateo-reports/internal/logger"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go rh.run(fn)
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go rh.run(func() { fn(ctx) })
}

// Run выполняет fn синхронно, перехватывая panic. Нужен для задач планировщика.
func (rh *RecoveryHandler) Run(fn func()) (recovered bool) {
	defer func() {
		if r := recover(); r != nil {
			recovered = true
			rh.logger.Errorf("panic в фоновой задаче: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
	return false
}

func (rh *RecoveryHandler) run(fn func()) {
	rh.Run(fn)
}

// DefaultRecoveryHandler пишет паники в logrus.
var DefaultRecoveryHandler = NewRecoveryHandler(logger.RecoveryLogger{})

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}
