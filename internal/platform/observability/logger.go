package observability

import (
	"context"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sash-studio/api/internal/platform/requestctx"
)

// NewLogger builds the JSON logger used in Cloud Run at the level named by LOG_LEVEL.
func NewLogger() (*zap.Logger, error) {
	return NewLoggerAt(os.Getenv("LOG_LEVEL"))
}

// NewLoggerAt builds the JSON logger at level. Unknown levels fall back to info.
func NewLoggerAt(level string) (*zap.Logger, error) {
	atomic := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if lvl := strings.ToLower(strings.TrimSpace(level)); lvl != "" {
		_ = atomic.UnmarshalText([]byte(lvl))
	}

	cfg := zap.Config{
		Level:    atomic,
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:    "message",
			TimeKey:       "timestamp",
			LevelKey:      "severity",
			CallerKey:     "caller",
			StacktraceKey: "stacktrace",
			EncodeTime:    zapcore.RFC3339NanoTimeEncoder,
			EncodeLevel:   zapcore.CapitalLevelEncoder,
			EncodeCaller:  zapcore.ShortCallerEncoder,
		},
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	return cfg.Build()
}

// FromContext returns the request logger stored on ctx.
func FromContext(ctx context.Context) *zap.Logger {
	return requestctx.Logger(ctx)
}

// EventLogger adapts zap to the event hooks used by services. Events ending in
// ".failed" are logged at warn, everything else at info. The request logger on
// ctx wins over fallback when present.
func EventLogger(fallback *zap.Logger) func(context.Context, string, map[string]any) {
	if fallback == nil {
		fallback = zap.NewNop()
	}
	return func(ctx context.Context, event string, fields map[string]any) {
		logger := fallback
		if requestctx.HasLogger(ctx) {
			logger = requestctx.Logger(ctx)
		}

		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		zf := make([]zap.Field, 0, len(keys)+1)
		zf = append(zf, zap.String("event", event))
		for _, k := range keys {
			zf = append(zf, zap.Any(k, fields[k]))
		}

		if strings.HasSuffix(event, ".failed") {
			logger.Warn(event, zf...)
			return
		}
		logger.Info(event, zf...)
	}
}
