package core

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger replaces the global zap logger with one honoring the configured
// level.
func NewLogger(level string) {
	parsedLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zap.L().Warn("Unknown log level, keeping info", zap.String("level", level))
		parsedLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parsedLevel)

	zap.ReplaceGlobals(zap.Must(config.Build()))
}
