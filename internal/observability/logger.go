// Package observability provides the diagnostic logger and the in-process
// operation metrics for a bank session.
package observability

import (
	"fmt"

	"github.com/willfong/bankmgr/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a structured zap logger.
// A log file gets compact JSON at the configured level; verbose mode gets a
// colorized console logger on stderr at debug. With neither, logging is a
// no-op so the interactive screen stays clean.
func NewLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	if cfg.File == "" && !verbose {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	if cfg.File != "" {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.Level = zap.NewAtomicLevelAt(level)
		zcfg.OutputPaths = []string{cfg.File}
		zcfg.ErrorOutputPaths = []string{"stderr"}
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		zcfg.OutputPaths = []string{"stderr"}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
