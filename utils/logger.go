package utils

import (
	"log"

	"unilink/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger, set by InitializeLogger.
var Logger *zap.Logger

// InitializeLogger builds the logger for cfg and installs it as zap's global.
func InitializeLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config

	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			log.Printf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
			level = zapcore.InfoLevel
		}
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	Logger = logger
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// GetLogger retrieves the global logger, falling back to zap's global
// (a no-op logger until InitializeLogger runs).
func GetLogger() *zap.Logger {
	if Logger == nil {
		return zap.L()
	}
	return Logger
}
