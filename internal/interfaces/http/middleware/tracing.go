package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request through otelgin. Spans are named
// "METHOD route", e.g. "POST /api/v1/sessions/:id/checkout".
func Tracing(service string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return otelgin.Middleware(service)
}

// SpanIdentity copies request, client, session and user IDs onto the active
// span. It must run after the middleware that resolves them.
func SpanIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			ids := [...]struct{ key, value string }{
				{"request_id", RequestIDFrom(c)},
				{"client_id", GetClientID(c)},
				{"session_id", GetSessionID(c)},
				{"user_id", UserIDFrom(c)},
			}
			for _, id := range ids {
				if id.value != "" {
					span.SetAttributes(attribute.String(id.key, id.value))
				}
			}
		}
		c.Next()
	}
}

// SpanStatus fails the span of any 4xx response. otelgin already fails 5xx
// spans, and it runs after this middleware returns, so their status is left
// to it with an empty description.
func SpanStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		span := trace.SpanFromContext(c.Request.Context())
		if status < http.StatusBadRequest || !span.IsRecording() {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status < http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
