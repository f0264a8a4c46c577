// Package requestctx carries request-scoped values shared by middleware and handlers.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
	traceKey
	clientIPKey
)

var nop = zap.NewNop()

// TraceInfo is the trace metadata attached to an inbound request.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// WithLogger returns a copy of ctx carrying logger. A nil logger stores the no-op logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = nop
	}
	return context.WithValue(orBackground(ctx), loggerKey, logger)
}

// Logger returns the request logger or a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := value[*zap.Logger](ctx, loggerKey); ok && logger != nil {
		return logger
	}
	return nop
}

// HasLogger reports whether a logger was attached to ctx.
func HasLogger(ctx context.Context) bool {
	logger, ok := value[*zap.Logger](ctx, loggerKey)
	return ok && logger != nil && logger != nop
}

// WithTrace attaches trace metadata.
func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return context.WithValue(orBackground(ctx), traceKey, info)
}

// Trace returns the trace metadata attached to ctx.
func Trace(ctx context.Context) (TraceInfo, bool) {
	return value[TraceInfo](ctx, traceKey)
}

// TraceID returns the trace identifier or an empty string.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithClientIP records the caller address resolved by the edge middleware.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(orBackground(ctx), clientIPKey, ip)
}

// ClientIP returns the caller address or an empty string.
func ClientIP(ctx context.Context) string {
	ip, _ := value[string](ctx, clientIPKey)
	return ip
}

func value[T any](ctx context.Context, key contextKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
