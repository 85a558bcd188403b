// Package logger provides a thin wrapper around zap used across the service.
package logger

import (
	"go.uber.org/zap"
)

// Logger wraps a zap.Logger so callers can initialize it with a level
// after construction.
type Logger struct {
	// Log is the underlying zap logger. It is usable (as a no-op)
	// before Init is called.
	Log *zap.Logger
}

// New returns a Logger with a no-op zap logger. Call Init to replace it
// with a real one.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production zap logger at the given level ("Debug",
// "Info", "Warn", "Error") and installs it on the Logger.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	l.Log = log
	return nil
}
