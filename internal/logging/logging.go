// Package logging builds the zap logger used across plantcore and adapts it
// to the service logging contract.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a production zap logger at the given level. Level accepts
// the usual zap names (debug, info, warn, error); empty means info. Format
// "console" switches to the development encoder.
func New(level, format string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		lvl = parsed
	}
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Adapter exposes a zap sugared logger through the core Logger interface.
type Adapter struct {
	sugar *zap.SugaredLogger
}

// NewAdapter wraps the given logger. Callers keep ownership of the underlying
// logger and its Sync.
func NewAdapter(logger *zap.Logger) *Adapter {
	return &Adapter{sugar: logger.Sugar()}
}

// Debug logs at debug level with alternating key-value pairs.
func (a *Adapter) Debug(msg string, args ...any) { a.sugar.Debugw(msg, args...) }

// Info logs at info level with alternating key-value pairs.
func (a *Adapter) Info(msg string, args ...any) { a.sugar.Infow(msg, args...) }

// Warn logs at warn level with alternating key-value pairs.
func (a *Adapter) Warn(msg string, args ...any) { a.sugar.Warnw(msg, args...) }

// Error logs at error level with alternating key-value pairs.
func (a *Adapter) Error(msg string, args ...any) { a.sugar.Errorw(msg, args...) }
