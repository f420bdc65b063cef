package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/infrastructure/auth"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "middleware-test-secret-32-characters",
		AccessTokenExpiration: expiration,
		Issuer:                "restaurant-test",
	})
}

func issue(t *testing.T, svc *auth.JWTService, tenantID, userID uuid.UUID, roles ...string) string {
	t.Helper()
	token, _, err := svc.GenerateToken(auth.GenerateTokenInput{
		TenantID: tenantID,
		UserID:   userID,
		Username: "caixa",
		Roles:    roles,
	})
	require.NoError(t, err)
	return token
}

func authRouter(cfg AuthConfig, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(cfg))
	handlers := append(extra, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tenant_id": c.GetString(logger.GinTenantIDKey),
			"user_id":   c.GetString(logger.GinUserIDKey),
		})
	})
	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.POST("/orders/:id/payments", handlers...)
	return router
}

func TestJWTAuth(t *testing.T) {
	svc := newAuthService(time.Hour)
	tenantID, userID := uuid.New(), uuid.New()

	t.Run("valid token sets identity", func(t *testing.T) {
		router := authRouter(AuthConfig{JWTService: svc})
		req := httptest.NewRequest(http.MethodPost, "/orders/1/payments", nil)
		req.Header.Set(AuthHeader, BearerPrefix+issue(t, svc, tenantID, userID, auth.RoleCashier))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tenantID.String())
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		router := authRouter(AuthConfig{JWTService: svc})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/1/payments", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newAuthService(-time.Minute)
		router := authRouter(AuthConfig{JWTService: svc})
		req := httptest.NewRequest(http.MethodPost, "/orders/1/payments", nil)
		req.Header.Set(AuthHeader, BearerPrefix+issue(t, expired, tenantID, userID))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("skip paths are public", func(t *testing.T) {
		router := authRouter(AuthConfig{JWTService: svc, SkipPaths: []string{"/health"}})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("header identity only when allowed", func(t *testing.T) {
		req := func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/orders/1/payments", nil)
			r.Header.Set(TenantIDHeader, tenantID.String())
			r.Header.Set(UserIDHeader, userID.String())
			return r
		}

		w := httptest.NewRecorder()
		authRouter(AuthConfig{JWTService: svc}).ServeHTTP(w, req())
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = httptest.NewRecorder()
		authRouter(AuthConfig{JWTService: svc, AllowHeaderIdentity: true}).ServeHTTP(w, req())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tenantID.String())
	})

	t.Run("header identity must be UUIDs", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/orders/1/payments", nil)
		r.Header.Set(TenantIDHeader, "acme")
		r.Header.Set(UserIDHeader, userID.String())
		w := httptest.NewRecorder()
		authRouter(AuthConfig{AllowHeaderIdentity: true}).ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	svc := newAuthService(time.Hour)
	router := authRouter(AuthConfig{JWTService: svc}, RequireRole(auth.RoleCashier, auth.RoleManager))

	t.Run("allowed role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders/1/payments", nil)
		req.Header.Set(AuthHeader, BearerPrefix+issue(t, svc, uuid.New(), uuid.New(), auth.RoleManager))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders/1/payments", nil)
		req.Header.Set(AuthHeader, BearerPrefix+issue(t, svc, uuid.New(), uuid.New(), auth.RoleKitchen))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "FORBIDDEN")
	})
}
