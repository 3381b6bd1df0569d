package utils

import (
	"log"
	"strings"
	"sync"

	"visapoint/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// InitializeLogger builds the process logger from ENV and LOG_LEVEL and makes
// it the zap global. Production logs are JSON with ISO8601 timestamps.
func InitializeLogger() {
	loggerOnce.Do(func() {
		production := config.IsProduction()

		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if production {
			cfg = zap.NewProductionConfig()
			cfg.EncoderConfig.TimeKey = "timestamp"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}
		cfg.Level = zap.NewAtomicLevelAt(levelFor(config.AppConfig.LogLevel, production))

		built, err := cfg.Build()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		if env := config.GetEnv(); env != "" {
			built = built.With(zap.String("env", env))
		}
		logger = built
		zap.ReplaceGlobals(logger)
	})
}

// GetLogger returns the process logger, building it on first use.
func GetLogger() *zap.Logger {
	InitializeLogger()
	return logger
}

func levelFor(name string, production bool) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		if production {
			return zapcore.InfoLevel
		}
		return zapcore.DebugLevel
	}
	return lvl
}
