// Package logger builds the application-wide zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLocal      = "local"
	envDev        = "dev"
	envProduction = "production"
)

// New creates a zap logger configured for the given environment.
// Local and dev environments get a human-readable console encoder with
// debug level; everything else gets production JSON output.
func New(env string) *zap.Logger {
	var cfg zap.Config

	switch env {
	case envLocal, envDev:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case envProduction:
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		// A broken logger config is not recoverable at runtime
		panic("failed to build logger: " + err.Error())
	}

	return log.With(zap.String("env", env))
}
