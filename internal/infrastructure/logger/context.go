package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ID names a request-scoped identifier that travels in a context and is
// copied onto every entry logged through L.
type ID string

const (
	RequestID ID = "request_id"
	SessionID ID = "session_id"
	ClientID  ID = "client_id"
	UserID    ID = "user_id"
)

var contextIDs = [...]ID{RequestID, SessionID, ClientID, UserID}

type loggerKey struct{}

// WithContext stores l in ctx. Keep it free of ID fields; L adds them.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithID stores value under id. Empty values are not stored.
func WithID(ctx context.Context, id ID, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, id, value)
}

// From returns the value stored under id, or "".
func (id ID) From(ctx context.Context) string {
	v, _ := ctx.Value(id).(string)
	return v
}

// L returns the context logger with trace_id, span_id and every stored ID attached.
//
//	logger.L(ctx).Warn("theme preference write failed", zap.Error(err))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich attaches the trace and ID fields found in ctx to l.
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, len(contextIDs)+2)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()))
	}
	for _, id := range contextIDs {
		if v := id.From(ctx); v != "" {
			fields = append(fields, zap.String(string(id), v))
		}
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
