package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"DEVMARKET_APP_NAME":                os.Getenv("DEVMARKET_APP_NAME"),
		"DEVMARKET_APP_ENV":                 os.Getenv("DEVMARKET_APP_ENV"),
		"DEVMARKET_APP_PORT":                os.Getenv("DEVMARKET_APP_PORT"),
		"DEVMARKET_DATABASE_HOST":           os.Getenv("DEVMARKET_DATABASE_HOST"),
		"DEVMARKET_DATABASE_PORT":           os.Getenv("DEVMARKET_DATABASE_PORT"),
		"DEVMARKET_DATABASE_USER":           os.Getenv("DEVMARKET_DATABASE_USER"),
		"DEVMARKET_DATABASE_PASSWORD":       os.Getenv("DEVMARKET_DATABASE_PASSWORD"),
		"DEVMARKET_DATABASE_DBNAME":         os.Getenv("DEVMARKET_DATABASE_DBNAME"),
		"DEVMARKET_DATABASE_SSLMODE":        os.Getenv("DEVMARKET_DATABASE_SSLMODE"),
		"DEVMARKET_DATABASE_MAX_OPEN_CONNS": os.Getenv("DEVMARKET_DATABASE_MAX_OPEN_CONNS"),
		"DEVMARKET_DATABASE_MAX_IDLE_CONNS": os.Getenv("DEVMARKET_DATABASE_MAX_IDLE_CONNS"),
		"DEVMARKET_JWT_SECRET":              os.Getenv("DEVMARKET_JWT_SECRET"),
		"DEVMARKET_STRIPE_SECRET_KEY":       os.Getenv("DEVMARKET_STRIPE_SECRET_KEY"),
		"DEVMARKET_STORAGE_BUCKET":          os.Getenv("DEVMARKET_STORAGE_BUCKET"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "devmarket-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "devmarket", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "usd", cfg.Stripe.Currency)
		assert.Equal(t, "devmarket-files", cfg.Storage.Bucket)
	})

	t.Run("loads values from environment variables", func(t *testing.T) {
		clearEnv()
		os.Setenv("DEVMARKET_APP_NAME", "test-app")
		os.Setenv("DEVMARKET_APP_PORT", "9000")
		os.Setenv("DEVMARKET_DATABASE_HOST", "testdb.local")
		os.Setenv("DEVMARKET_DATABASE_PASSWORD", "testpass")
		os.Setenv("DEVMARKET_STRIPE_SECRET_KEY", "sk_test_abc")
		os.Setenv("DEVMARKET_STORAGE_BUCKET", "test-bucket")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "sk_test_abc", cfg.Stripe.SecretKey)
		assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("DEVMARKET_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("DEVMARKET_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("production requires a real secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("DEVMARKET_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production rejects test stripe key", func(t *testing.T) {
		clearEnv()
		os.Setenv("DEVMARKET_APP_ENV", "production")
		os.Setenv("DEVMARKET_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		os.Setenv("DEVMARKET_DATABASE_PASSWORD", "pw")
		os.Setenv("DEVMARKET_DATABASE_SSLMODE", "require")
		os.Setenv("DEVMARKET_STRIPE_SECRET_KEY", "sk_test_abc")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stripe.secret_key")
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.example.com",
		Port:     5432,
		User:     "app",
		Password: "p@ss/word",
		DBName:   "devmarket",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.example.com:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// special characters in the password are escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", r.Addr())
}
