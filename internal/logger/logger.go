// server/internal/logger/logger.go

// Package logger builds the process wide zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. format "json" selects the production encoder,
// anything else the human readable development one.
func New(levelStr, format string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// Init builds the logger and installs it as zap's global, returning a flush func.
func Init(levelStr, format string) (func(), error) {
	l, err := New(levelStr, format)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(l)
	return func() {
		_ = l.Sync()
		restore()
	}, nil
}
