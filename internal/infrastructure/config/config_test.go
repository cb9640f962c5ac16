package config

import (
	"testing"
	"time"

	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "retailcore", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "retailcore.db", cfg.Database.Path)
		assert.Equal(t, 1, cfg.Database.MaxOpenConns)
		assert.Equal(t, 1, cfg.Database.MaxIdleConns)
		assert.Equal(t, CartStoreMemory, cfg.Cart.Store)
		assert.Equal(t, 24*time.Hour, cfg.Cart.TTL)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.JWT.Required)
		assert.Equal(t, "VES", cfg.Pricing.LocalCurrency)
		assert.Equal(t, 200, cfg.Event.ActivityCapacity)
		assert.False(t, cfg.Telemetry.Enabled)
	})

	t.Run("loads values from environment variables with RETAIL prefix", func(t *testing.T) {
		t.Setenv("RETAIL_APP_PORT", "9000")
		t.Setenv("RETAIL_DATABASE_DRIVER", "postgres")
		t.Setenv("RETAIL_DATABASE_HOST", "db.local")
		t.Setenv("RETAIL_DATABASE_PORT", "5433")
		t.Setenv("RETAIL_DATABASE_PASSWORD", "secret")
		t.Setenv("RETAIL_CART_STORE", "redis")
		t.Setenv("RETAIL_REDIS_HOST", "cache.local")
		t.Setenv("RETAIL_PRICING_EXCHANGE_RATE_PRIMARY", "36.5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, CartStoreRedis, cfg.Cart.Store)
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.Equal(t, "36.5", cfg.Pricing.ExchangeRatePrimary)
		// secondary follows primary when unset
		assert.Equal(t, "36.5", cfg.Pricing.ExchangeRateSecondary)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		t.Setenv("RETAIL_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects unknown cart store", func(t *testing.T) {
		t.Setenv("RETAIL_CART_STORE", "disk")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cart.store")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("RETAIL_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("RETAIL_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects a non-positive seed rate", func(t *testing.T) {
		t.Setenv("RETAIL_PRICING_EXCHANGE_RATE_PRIMARY", "0")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pricing seed")
	})

	t.Run("rejects a malformed seed value", func(t *testing.T) {
		t.Setenv("RETAIL_PRICING_DEFAULT_VAT_PERCENT", "sixteen")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pricing.default_vat_percent")
	})

	t.Run("rejects an unknown local currency", func(t *testing.T) {
		t.Setenv("RETAIL_PRICING_LOCAL_CURRENCY", "BOLIVARES")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pricing.local_currency")
	})

	t.Run("normalizes the local currency code", func(t *testing.T) {
		t.Setenv("RETAIL_PRICING_LOCAL_CURRENCY", " cop ")

		cfg, err := Load()
		require.NoError(t, err)
		c, err := cfg.Pricing.Currency()
		require.NoError(t, err)
		assert.Equal(t, valueobject.Currency("COP"), c)
	})

	t.Run("required tokens need a secret", func(t *testing.T) {
		t.Setenv("RETAIL_JWT_REQUIRED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("short jwt secret", func(t *testing.T) {
		t.Setenv("RETAIL_APP_ENV", "production")
		t.Setenv("RETAIL_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("postgres without ssl", func(t *testing.T) {
		t.Setenv("RETAIL_APP_ENV", "production")
		t.Setenv("RETAIL_DATABASE_DRIVER", "postgres")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("valid production config", func(t *testing.T) {
		t.Setenv("RETAIL_APP_ENV", "production")
		t.Setenv("RETAIL_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	v.Set("database.driver", "POSTGRES")
	v.Set("telemetry.sampling_ratio", 0.25)
	v.Set("pricing.exchange_rate_primary", "36")
	v.Set("pricing.exchange_rate_secondary", "40")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 0.25, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, "retailcore", cfg.Telemetry.ServiceName)

	settings, err := cfg.Pricing.Settings()
	require.NoError(t, err)
	assert.True(t, settings.ExchangeRatePrimary.Equal(decimal.NewFromInt(36)))
	assert.True(t, settings.ExchangeRateSecondary.Equal(decimal.NewFromInt(40)))
	assert.True(t, settings.DefaultMarginPercent.Equal(decimal.NewFromInt(30)))
	assert.True(t, settings.DefaultVatPercent.Equal(decimal.NewFromInt(16)))

	v.Set("telemetry.sampling_ratio", 1.5)
	_, err = fromViper(v)
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "pass@word#123",
		DBName:   "retail",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "pass%40word%23123")
	assert.Contains(t, dsn, "sslmode=disable")
}
