package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nixlim/pantry-alerts/internal/config"
)

// FileName is the active log file inside the configured directory.
const FileName = "pantry-alerts.log"

// NewLogger builds a JSON logger writing to a rotated file in cfg.Dir, or
// to stderr when cfg.Dir is empty.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}

	var w zapcore.WriteSyncer
	if cfg.Dir == "" {
		w = zapcore.Lock(os.Stderr)
	} else {
		dir := config.ExpandHome(cfg.Dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		w = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(dir, FileName),
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), w, level)
	return zap.New(core), nil
}
