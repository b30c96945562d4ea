// Package logger builds the application's structured logger. Production
// environments get JSON output at the configured level; anything else gets
// zap's human-readable development encoder.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the subset of internal/config.Config the logger needs. Defined
// here, rather than imported, to keep this package free of a dependency on
// internal/config.
type Config struct {
	Env   string
	Level string
}

// New builds a *zap.Logger: JSON/production encoding when Env == "production",
// console/development encoding otherwise, with the level parsed from cfg.
func New(cfg Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if strings.EqualFold(cfg.Env, "production") {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
