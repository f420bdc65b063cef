package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyKeyCtx    = "idempotency_key"
	maxIdempotencyKeyLen = 128
)

// IdempotencyKey validates the optional Idempotency-Key header and makes it
// available to handlers through GetIdempotencyKey.
func IdempotencyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen || !printableASCII(key) {
			resp := dto.NewValidationErrorResponse("Invalid Idempotency-Key header", c.GetString(logger.GinRequestIDKey), []dto.ValidationDetail{
				{Field: IdempotencyKeyHeader, Message: "Must be at most 128 printable ASCII characters"},
			})
			c.AbortWithStatusJSON(http.StatusBadRequest, resp)
			return
		}
		c.Set(idempotencyKeyCtx, key)
		c.Next()
	}
}

// GetIdempotencyKey returns the validated key, or "" when none was sent
func GetIdempotencyKey(c *gin.Context) string {
	return c.GetString(idempotencyKeyCtx)
}

func printableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
