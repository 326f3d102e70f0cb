package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger with additional functionality.
type Logger struct {
	*zap.Logger
}

// NewLogger creates a new logger instance with production configuration at info level.
func NewLogger() (*Logger, error) {
	return NewLoggerWithLevel("info")
}

// NewLoggerWithLevel creates a production logger writing JSON to stdout at the given level
// (debug, info, warn, error). An unknown level falls back to info.
func NewLoggerWithLevel(level string) (*Logger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config.Level = zap.NewAtomicLevelAt(zapLevel)

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}
