package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultLogger *zap.SugaredLogger

func MustGetLogger() *zap.SugaredLogger {
	if defaultLogger != nil {
		return defaultLogger
	}

	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true // Disable stack traces

	lvl, err := zapcore.ParseLevel(AppCfg.LogLevel)
	if err != nil {
		lvl = zapcore.InfoLevel // Fall back to INFO on unknown level names.
	}
	c.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := c.Build()
	if err != nil {
		fmt.Printf("Failed to create logger: %v", err)
		os.Exit(1)
	}

	defaultLogger = logger.Sugar()
	return defaultLogger
}
