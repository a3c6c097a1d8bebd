package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/corporate-valuation/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger builds the CLI logger. Logs go to stderr, or to the
// configured file, so stdout carries only report output.
func initializeLogger(lc config.LoggingConfig, levelOverride string) (*zap.Logger, error) {
	name := lc.Level
	if levelOverride != "" {
		name = levelOverride
	}
	level, err := parseLevel(name)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	switch lc.Format {
	case "", "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", lc.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	if lc.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(lc.OutputFile), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory for %s, %w", lc.OutputFile, err)
		}
		zc.OutputPaths = []string{lc.OutputFile}
		zc.ErrorOutputPaths = []string{lc.OutputFile}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger, %w", err)
	}
	return logger, nil
}

// parseLevel accepts zap's level names in any case, plus "warning". An
// empty name is info.
func parseLevel(name string) (zapcore.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, fmt.Errorf("invalid log level: %s", name)
	}
	return level, nil
}
