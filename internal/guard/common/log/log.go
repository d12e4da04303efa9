// Package log is the structured logging facade used across guardia.
// Callers pass a field map and a short snake_case message; the backend is zap.
package log

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the guardia logging interface.
type Logger interface {
	Debug(fields map[string]any, msg string)
	Info(fields map[string]any, msg string)
	Warn(fields map[string]any, msg string)
	Error(fields map[string]any, msg string)
	Panic(fields map[string]any, msg string)
	Fatal(fields map[string]any, msg string)
}

type holder struct{ l Logger }

var global atomic.Value

func init() {
	global.Store(holder{newZapLogger(false, zapcore.InfoLevel)})
}

// SetLogger replaces the global logger instance.
func SetLogger(l Logger) {
	global.Store(holder{l})
}

// GetLogger returns the current global logger instance.
func GetLogger() Logger {
	return global.Load().(holder).l
}

// Configure sets up the global logger. Any env other than "prod" selects the
// colored development encoder.
func Configure(env, level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	SetLogger(newZapLogger(env != "prod", lvl))
	return nil
}

func Debug(fields map[string]any, msg string) { GetLogger().Debug(fields, msg) }
func Info(fields map[string]any, msg string)  { GetLogger().Info(fields, msg) }
func Warn(fields map[string]any, msg string)  { GetLogger().Warn(fields, msg) }
func Error(fields map[string]any, msg string) { GetLogger().Error(fields, msg) }
func Panic(fields map[string]any, msg string) { GetLogger().Panic(fields, msg) }
func Fatal(fields map[string]any, msg string) { GetLogger().Fatal(fields, msg) }

// zapLogger implements Logger using Uber's zap.
type zapLogger struct {
	base *zap.Logger
}

func newZapLogger(dev bool, level zapcore.Level) Logger {
	var config zap.Config
	if dev {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "msg"
	config.EncoderConfig.LevelKey = "level"
	// stdout carries harness replies; logs stay on stderr.
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return &zapLogger{base: logger}
}

func (l *zapLogger) Debug(fields map[string]any, msg string) { l.with(fields).Debug(msg) }
func (l *zapLogger) Info(fields map[string]any, msg string)  { l.with(fields).Info(msg) }
func (l *zapLogger) Warn(fields map[string]any, msg string)  { l.with(fields).Warn(msg) }
func (l *zapLogger) Error(fields map[string]any, msg string) { l.with(fields).Error(msg) }
func (l *zapLogger) Panic(fields map[string]any, msg string) { l.with(fields).Panic(msg) }
func (l *zapLogger) Fatal(fields map[string]any, msg string) { l.with(fields).Fatal(msg) }

func (l *zapLogger) with(m map[string]any) *zap.Logger {
	if len(m) == 0 {
		return l.base
	}
	fields := make([]zap.Field, 0, len(m))
	for k, v := range m {
		if err, ok := v.(error); ok {
			fields = append(fields, zap.NamedError(k, err))
			continue
		}
		fields = append(fields, zap.Any(k, v))
	}
	return l.base.With(fields...)
}

// noopLogger discards everything.
type noopLogger struct{}

func (noopLogger) Debug(map[string]any, string) {}
func (noopLogger) Info(map[string]any, string)  {}
func (noopLogger) Warn(map[string]any, string)  {}
func (noopLogger) Error(map[string]any, string) {}
func (noopLogger) Panic(map[string]any, string) {}
func (noopLogger) Fatal(map[string]any, string) {}

// NewNoopLogger returns a Logger that discards all log messages.
func NewNoopLogger() Logger {
	return noopLogger{}
}
