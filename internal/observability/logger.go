// Package observability owns the process-wide zap logger of the overlap command.
package observability

import (
	"sync"
	"sync/atomic"

	"github.com/akmonengine/overlap/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	current atomic.Pointer[zap.Logger]
	once    sync.Once
)

// Initialize builds the logger of the process on its first call; later calls are no-ops.
// Records go to out in the configured format, and also as JSON to cfg.LogFile when set,
// rotated by size.
func Initialize(cfg config.LoggerConfig, out zapcore.WriteSyncer) {
	once.Do(func() {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}

		core := zapcore.NewCore(encoder(cfg.Format), out, level)
		if cfg.LogFile != "" {
			rotating := &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			core = zapcore.NewTee(core, zapcore.NewCore(encoder("json"), zapcore.AddSync(rotating), level))
		}

		var opts []zap.Option
		if cfg.AddSource {
			opts = append(opts, zap.AddCaller())
		}
		logger := zap.New(core, opts...).Named(cfg.ServiceName)
		current.Store(logger)
	})
}

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// GetLogger returns the process logger, or a no-op logger before Initialize.
func GetLogger() *zap.Logger {
	if logger := current.Load(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

// Sync flushes the process logger.
func Sync() error {
	if logger := current.Load(); logger != nil {
		return logger.Sync()
	}
	return nil
}

// ResetForTest lets the next Initialize build a new logger.
func ResetForTest() {
	once = sync.Once{}
	current.Store(nil)
}
