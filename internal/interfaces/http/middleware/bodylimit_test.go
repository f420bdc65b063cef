package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyEcho() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusBadRequest, "body too large")
			return
		}
		c.String(http.StatusOK, "ok")
	}
}

func TestBodyLimit(t *testing.T) {
	t.Run("rejects declared length over the limit", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID(), BodyLimit(100))
		router.POST("/orders", bodyEcho())

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(strings.Repeat("x", 200)))
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
		assert.Contains(t, w.Body.String(), "req-42")
	})

	t.Run("caps bodies without a length", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(50))
		router.POST("/orders", bodyEcho())

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(strings.Repeat("x", 100)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero disables the limit", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(0))
		router.POST("/orders", bodyEcho())

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(strings.Repeat("x", 1000)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
