package logging

import (
	"go.uber.org/zap"
	"time"
)

// Logger wraps zap.SugaredLogger and
// allows to get the interval for periodic logging.
type Logger struct {
	*zap.SugaredLogger
	interval time.Duration
}

// NewLogger returns a new Logger.
func NewLogger(base *zap.SugaredLogger, interval time.Duration) *Logger {
	return &Logger{
		SugaredLogger: base,
		interval:      interval,
	}
}

// Interval returns the interval for periodic logging.
func (l *Logger) Interval() time.Duration {
	return l.interval
}

// With adds a variadic number of fields to the logging context, see zap.SugaredLogger.With.
// The returned Logger keeps the interval of l.
func (l *Logger) With(args ...interface{}) *Logger {
	return NewLogger(l.SugaredLogger.With(args...), l.interval)
}

// Nop returns a Logger that never writes out logs, e.g. for tests.
func Nop() *Logger {
	return NewLogger(zap.NewNop().Sugar(), time.Second)
}
