// Package debug builds the transport trace logger.
package debug

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultPath is where traces are written when no path is given.
const DefaultPath = "hotspotctl-debug.log"

// New returns a zap logger writing JSON lines to path at the given level
// ("debug", "info", "warn", "error"). An empty level disables tracing and
// returns a no-op logger. The returned func flushes the log.
func New(level, path string) (*zap.Logger, func(), error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return zap.NewNop(), func() {}, nil
	}
	if path == "" {
		path = DefaultPath
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, nil, fmt.Errorf("invalid debug level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building debug logger: %w", err)
	}
	logger.Debug("--- hotspotctl debug log ---")
	return logger, func() {
		logger.Debug("--- session ended ---")
		_ = logger.Sync()
	}, nil
}
