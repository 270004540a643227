// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tasknova/internal/config"
)

// New builds a logger from cfg. Output goes to w (stderr when nil) so that
// stdout stays reserved for command output. debug forces the debug level.
func New(cfg config.LoggingConfig, debug bool, w io.Writer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = zapcore.DebugLevel
	}
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core), nil
}

// parseLevel maps a config level to zap. An interactive client stays quiet
// unless asked, so the default is warn.
func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "", "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.WarnLevel, fmt.Errorf("unknown log level: %q", s)
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
