// Package logger configures the shared zap logger used by the CLI and the
// resolution services.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the logger is built.
type Config struct {
	// Debug enables debug-level output.
	Debug bool
	// Format selects "json" or "human" output.
	Format string
}

// New builds a sugared logger from the configuration.
func New(cfg Config) (*zap.SugaredLogger, error) {
	var zapConfig zap.Config

	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.Debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	log, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return log.Sugar(), nil
}

// Nop returns a logger that discards everything. Services default to it so
// library callers get no output unless they ask for it.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
