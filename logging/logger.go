package logging

import (
	"context"
)

// Logger is a leveled, structured logger. Every message carries its context as alternating keys and values.
type Logger interface {
	Sublogger(subname string) Logger
	SetLevel(level Level)
	GetLevel() Level
	Sync() error

	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// CDebugw logs at debug level, and also regardless of level when ctx was marked with EnableDebugMode.
	CDebugw(ctx context.Context, msg string, keysAndValues ...interface{})

	// Fatalw logs at error level, flushes every appender and exits the process.
	Fatalw(msg string, keysAndValues ...interface{})
}
