// Package logger is the process-wide structured logger. Values are passed as
// alternating key/value pairs.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(msg string, values ...any)
	Warn(msg string, values ...any)
	Error(msg string, values ...any)
	Debug(msg string, values ...any)
	Panic(message string, values ...any)
	Fatal(error error, values ...any)
	Printf(format string, args ...any)
	Named(name string) Logger
}

func init() {
	config := zap.NewDevelopmentConfig()
	if os.Getenv("APP_ENV") == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "time"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	config.DisableStacktrace = true
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if l, err := zap.ParseAtomicLevel(lvl); err == nil {
			config.Level = l
		}
	}

	if _, err := NewLogger(config); err != nil {
		panic(err)
	}
}

func Info(msg string, values ...any) {
	GetLogger().Info(msg, values...)
}

func Warn(msg string, values ...any) {
	GetLogger().Warn(msg, values...)
}

func Error(msg string, values ...any) {
	GetLogger().Error(msg, values...)
}

func Debug(msg string, values ...any) {
	GetLogger().Debug(msg, values...)
}

func Panic(msg string, values ...any) {
	GetLogger().Panic(msg, values...)
}

func Fatal(error error, values ...any) {
	GetLogger().Fatal(error, values...)
}

// Named returns a child logger whose entries carry name as the logger field.
// It shares the global level.
func Named(name string) Logger {
	return GetLogger().Named(name)
}

// SetLevel changes the level of the global logger at runtime.
// Unknown levels are rejected and the current level is kept.
func SetLevel(level string) error {
	return GetLogger().SetLevel(level)
}

// Sync flushes buffered entries. Call it once before the process exits.
func Sync() {
	_ = GetLogger().Sync()
}
