// Package logger provides structured logging for the quest server.
// Every stage transition and rejected input should be traceable through this.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger provides structured logging with context.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger at info level with console output.
func NewLogger() *Logger {
	l, err := New("info", false)
	if err != nil {
		// "info" always parses.
		panic(err)
	}
	return l
}

// New creates a logger for the given level ("debug", "info", "warn", "error").
// Development mode switches to zap's development defaults (debug, caller, stack traces on warn).
func New(level string, development bool) (*Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Encoding = "console"
	cfg.Level = lvl

	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{sugar: base.Sugar().Named("quest")}, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

// Debug logs verbose diagnostics, such as ignored input.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs informational messages.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs error messages.
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Event logs a game event for the session audit trail.
func (l *Logger) Event(eventType string, sessionID string, details string) {
	l.sugar.Infow(details, "event", eventType, "session", sessionID)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
