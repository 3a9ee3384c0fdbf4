package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// WithFields возвращает запись с полями. До Init (например, в тестах) пишет в никуда.
func WithFields(fields logrus.Fields) *logrus.Entry {
	if Log == nil {
		return discard.WithFields(fields)
	}
	return Log.WithFields(fields)
}

// RecoveryLogger реализует goroutine.Logger поверх logrus.
type RecoveryLogger struct{}

func (RecoveryLogger) Errorf(format string, args ...interface{}) {
	if Log == nil {
		discard.Errorf(format, args...)
		return
	}
	Log.Errorf(format, args...)
}
