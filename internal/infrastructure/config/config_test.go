package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "restaurant-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "restaurant", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Inventory.AllowNegativeOnSale)
		assert.False(t, cfg.Inventory.AllowNegativeOnManual)
		assert.True(t, cfg.Payment.IdempotencyEnabled)
		assert.Equal(t, 24*time.Hour, cfg.Payment.IdempotencyTTL)
		assert.Equal(t, "30 3 * * *", cfg.Ledger.AuditCron)
		assert.False(t, cfg.Ledger.AuditEnabled)
		assert.True(t, cfg.Swagger.Enabled)
	})

	t.Run("loads values from environment variables with RESTO prefix", func(t *testing.T) {
		t.Setenv("RESTO_APP_PORT", "9000")
		t.Setenv("RESTO_DATABASE_HOST", "testdb.local")
		t.Setenv("RESTO_DATABASE_PASSWORD", "testpass")
		t.Setenv("RESTO_INVENTORY_ALLOW_NEGATIVE_ON_SALE", "false")
		t.Setenv("RESTO_INVENTORY_ALLOW_NEGATIVE_ON_MANUAL", "true")
		t.Setenv("RESTO_PAYMENT_IDEMPOTENCY_TTL", "2h")
		t.Setenv("RESTO_LEDGER_AUDIT_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.False(t, cfg.Inventory.AllowNegativeOnSale)
		assert.True(t, cfg.Inventory.AllowNegativeOnManual)
		assert.Equal(t, 2*time.Hour, cfg.Payment.IdempotencyTTL)
		assert.True(t, cfg.Ledger.AuditEnabled)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("RESTO_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("RESTO_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects a too short idempotency ttl", func(t *testing.T) {
		t.Setenv("RESTO_PAYMENT_IDEMPOTENCY_TTL", "5s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idempotency_ttl")
	})

	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		t.Setenv("RESTO_APP_ENV", "production")
		t.Setenv("RESTO_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production refuses open swagger docs", func(t *testing.T) {
		t.Setenv("RESTO_APP_ENV", "production")
		t.Setenv("RESTO_JWT_SECRET", "production-secret-that-is-long-enough")
		t.Setenv("RESTO_DATABASE_PASSWORD", "secret")
		t.Setenv("RESTO_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger")

		t.Setenv("RESTO_SWAGGER_REQUIRE_AUTH", "true")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.RequireAuth)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "resto",
		Password: "p@ss word",
		DBName:   "restaurant",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://resto:p%40ss%20word@db:5432/restaurant?sslmode=disable", cfg.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
