package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

// Carrier strategies for pending pairing state.
const (
	CarrierRedirect = "redirect" // state encrypted into the redirect URI
	CarrierStore    = "store"    // state kept server-side, token in the URI
)

// Pending-state store backends for the "store" carrier.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Signing-key residency modes.
const (
	KeyModeSession     = "session"     // keypair generated per pairing, embedded in the session
	KeyModeEnvironment = "environment" // long-lived key from GATEWAY_PRIVATE_KEY
)

type Config struct {
	Port              int    `env:"PORT" envDefault:"8080"`
	AppURL            string `env:"APP_URL" envDefault:"http://localhost:8080"`
	RedisURL          string `env:"REDIS_URL,required"`
	DatabaseURL       string `env:"DATABASE_URL"`
	PendingCarrier    string `env:"PENDING_CARRIER" envDefault:"store"`
	PendingStore      string `env:"PENDING_STORE" envDefault:"redis"`
	PendingTTLSeconds int    `env:"PENDING_TTL_SECONDS" envDefault:"600"`
	StateSecret       string `env:"STATE_SECRET"`
	KeyMode           string `env:"GATEWAY_KEY_MODE" envDefault:"session"`
	GatewayPrivateKey string `env:"GATEWAY_PRIVATE_KEY"`
	GatewayAppID      string `env:"GATEWAY_APP_ID"`
	AppName           string `env:"APP_NAME" envDefault:"Outsmart Arena"`
	AppDescription    string `env:"APP_DESCRIPTION" envDefault:"LLM battle arena game"`
	ChatTimeoutSecs   int    `env:"CHAT_TIMEOUT_SECONDS" envDefault:"60"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) PendingTTL() time.Duration {
	return time.Duration(c.PendingTTLSeconds) * time.Second
}

func (c *Config) ChatTimeout() time.Duration {
	return time.Duration(c.ChatTimeoutSecs) * time.Second
}

// CallbackURL is the redirect target registered with the gateway at
// pairing time. The carrier appends its state parameter to it.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.AppURL, "/") + "/gateway/callback"
}

func (c *Config) Validate(isProduction bool) error {
	switch c.PendingCarrier {
	case CarrierRedirect, CarrierStore:
	default:
		return fmt.Errorf("PENDING_CARRIER must be %q or %q", CarrierRedirect, CarrierStore)
	}

	switch c.PendingStore {
	case StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when PENDING_STORE=postgres")
		}
	default:
		return fmt.Errorf("PENDING_STORE must be %q or %q", StoreRedis, StorePostgres)
	}

	switch c.KeyMode {
	case KeyModeSession:
	case KeyModeEnvironment:
		if c.GatewayPrivateKey == "" {
			return fmt.Errorf("GATEWAY_PRIVATE_KEY is required when GATEWAY_KEY_MODE=environment")
		}
		if c.GatewayAppID == "" {
			return fmt.Errorf("GATEWAY_APP_ID is required when GATEWAY_KEY_MODE=environment")
		}
	default:
		return fmt.Errorf("GATEWAY_KEY_MODE must be %q or %q", KeyModeSession, KeyModeEnvironment)
	}

	if c.PendingCarrier == CarrierRedirect && c.StateSecret == "" {
		return fmt.Errorf("STATE_SECRET is required when PENDING_CARRIER=redirect (the pending keypair rides through the browser)")
	}

	if _, err := url.ParseRequestURI(c.AppURL); err != nil {
		return fmt.Errorf("APP_URL is not a valid URL: %w", err)
	}

	if isProduction {
		if c.StateSecret != "" {
			if err := validateSecret("STATE_SECRET", c.StateSecret); err != nil {
				return err
			}
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if !strings.HasPrefix(c.AppURL, "https://") {
			log.Warn().Msg("APP_URL is not https in production: gateway callbacks will transit in the clear")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
