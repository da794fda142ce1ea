package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Keys under which the HTTP middleware stores identifiers on the gin context.
const (
	GinRequestIDKey = string(RequestID)
	GinSessionIDKey = string(SessionID)
)

const ginLoggerKey = "logger"

func ginString(c *gin.Context, key string) string {
	return c.GetString(key)
}

// AccessLog writes one "HTTP Request" entry per request, at error level for
// 5xx and warn for 4xx. It stores a request logger on both the gin context
// and the request context; later middleware adds IDs to the latter.
func AccessLog(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := ginString(c, GinRequestIDKey)
		reqLog := base.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Set(ginLoggerKey, reqLog)
		ctx := WithID(WithContext(c.Request.Context(), reqLog), RequestID, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		optional := [...]struct{ key, value string }{
			{"route", c.FullPath()},
			{"session_id", ginString(c, GinSessionIDKey)},
			{"query", c.Request.URL.RawQuery},
		}
		for _, f := range optional {
			if f.value != "" {
				fields = append(fields, zap.String(f.key, f.value))
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			reqLog.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			reqLog.Warn("HTTP Request", fields...)
		default:
			reqLog.Info("HTTP Request", fields...)
		}
	}
}

// FromGin returns the request logger set by AccessLog, or a no-op logger.
func FromGin(c *gin.Context) *zap.Logger {
	if l, ok := c.Value(ginLoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
