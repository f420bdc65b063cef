package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing_TagsIdentity(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tenantID, userID := uuid.New(), uuid.New()

	router := gin.New()
	router.Use(
		RequestID(),
		Tracing("resto-test", provider),
		JWTAuth(AuthConfig{AllowHeaderIdentity: true}),
		SpanIdentity(),
	)
	router.GET("/dining/sessions/:id", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/dining/sessions/abc", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	req.Header.Set(TenantIDHeader, tenantID.String())
	req.Header.Set(UserIDHeader, userID.String())
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	attrs := make(map[attribute.Key]string)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "req-7", attrs["request_id"])
	assert.Equal(t, tenantID.String(), attrs["tenant_id"])
	assert.Equal(t, userID.String(), attrs["user_id"])
	assert.Equal(t, codes.Error, span.Status().Code)
}
