package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("PendingTTL converts seconds to duration", func(t *testing.T) {
		cfg := &Config{PendingTTLSeconds: 600}
		assert.Equal(t, 600*time.Second, cfg.PendingTTL())
	})

	t.Run("CallbackURL joins app URL and callback path", func(t *testing.T) {
		cfg := &Config{AppURL: "https://arena.example.com/"}
		assert.Equal(t, "https://arena.example.com/gateway/callback", cfg.CallbackURL())
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults", func(t *testing.T) {
		t.Setenv("REDIS_URL", "redis://localhost:6379")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, CarrierStore, cfg.PendingCarrier)
		assert.Equal(t, StoreRedis, cfg.PendingStore)
		assert.Equal(t, KeyModeSession, cfg.KeyMode)
		assert.Equal(t, "Outsmart Arena", cfg.AppName)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("fails without redis url", func(t *testing.T) {
		t.Setenv("REDIS_URL", "")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppURL:         "http://localhost:8080",
			RedisURL:       "redis://localhost:6379",
			PendingCarrier: CarrierStore,
			PendingStore:   StoreRedis,
			KeyMode:        KeyModeSession,
		}
	}

	t.Run("accepts default shape", func(t *testing.T) {
		assert.NoError(t, base().Validate(false))
	})

	t.Run("rejects unknown carrier", func(t *testing.T) {
		cfg := base()
		cfg.PendingCarrier = "cookie"
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("redirect carrier requires state secret", func(t *testing.T) {
		cfg := base()
		cfg.PendingCarrier = CarrierRedirect
		assert.Error(t, cfg.Validate(false))

		cfg.StateSecret = "s3cret"
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("postgres store requires database url", func(t *testing.T) {
		cfg := base()
		cfg.PendingStore = StorePostgres
		assert.Error(t, cfg.Validate(false))

		cfg.DatabaseURL = "postgres://localhost/outsmart"
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("environment key mode requires key and app id", func(t *testing.T) {
		cfg := base()
		cfg.KeyMode = KeyModeEnvironment
		assert.Error(t, cfg.Validate(false))

		cfg.GatewayPrivateKey = "AAAA"
		assert.Error(t, cfg.Validate(false))

		cfg.GatewayAppID = "app-1"
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("rejects short state secret in production", func(t *testing.T) {
		cfg := base()
		cfg.PendingCarrier = CarrierRedirect
		cfg.StateSecret = "short"
		assert.Error(t, cfg.Validate(true))
	})
}
