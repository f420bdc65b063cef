// Package middleware holds the gin middleware of the restaurant API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens a server span per request. A nil provider uses the global one.
func Tracing(serviceName string, provider trace.TracerProvider) gin.HandlerFunc {
	var opts []otelgin.Option
	if provider != nil {
		opts = append(opts, otelgin.WithTracerProvider(provider))
	}
	return otelgin.Middleware(serviceName, opts...)
}

// SpanIdentity tags the request span with the request, tenant and user IDs
// and marks 5xx responses as errors. It must run after Tracing and JWTAuth,
// while the span is still open.
func SpanIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		attrs := make([]attribute.KeyValue, 0, 3)
		if id := c.GetString(logger.GinRequestIDKey); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}
		if id := c.GetString(logger.GinTenantIDKey); id != "" {
			attrs = append(attrs, telemetry.AttrTenantID.String(id))
		}
		if id := c.GetString(logger.GinUserIDKey); id != "" {
			attrs = append(attrs, attribute.String("user_id", id))
		}
		span.SetAttributes(attrs...)

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
