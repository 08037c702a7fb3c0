package logger

import (
	"fmt"
	"os"
	"strings"

	"finnie/src/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. A nil config logs at INFO.
func NewLogger(config *models.MConfig, name string) *Logger {
	level := "INFO"
	if config != nil && config.LogLevel != "" {
		level = config.LogLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := zcfg.Build()
	if err != nil {
		// zap only fails here on a broken sink; stderr is always there
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		z = zap.NewNop()
	}
	return NewLoggerFromZap(z, name)
}

// -----------------------------------------------------------------------------

// NewLoggerFromZap wraps an existing zap logger (tests attach an observer core).
func NewLoggerFromZap(z *zap.Logger, name string) *Logger {
	if name != "" {
		z = z.Named(name)
	}
	return &Logger{
		name:   name,
		logger: z,
		sugar:  z.Sugar(),
	}
}

// -----------------------------------------------------------------------------

// Named returns a child logger sharing the same core.
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:   name,
		logger: l.logger.Named(name),
		sugar:  l.logger.Named(name).Sugar(),
	}
}

// -----------------------------------------------------------------------------

// With returns a child logger carrying the given structured fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	z := l.logger.With(fields...)
	return &Logger{name: l.name, logger: z, sugar: z.Sugar()}
}

// -----------------------------------------------------------------------------

// Zap exposes the underlying logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	return l.logger
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
	_ = l.logger.Sync()
	os.Exit(1)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.logger.Sync()
}

// -----------------------------------------------------------------------------

// ParseLevel maps the config level names onto zap levels.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARNING", "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "CRITICAL":
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}
