package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName           = "PesaFlow"
	defaultAppEnv            = "development"
	defaultPort              = "8000"
	defaultLogLevel          = "info"
	defaultShutdownPeriod    = 10 * time.Second
	defaultIdempotencyTTL    = 24 * time.Hour
	defaultClusterID         = 0
	defaultBootstrapAttempts = 10
	defaultBootstrapDelay    = time.Second
	defaultTransferFee       = 5
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	// Ledger engine connection and startup behavior.
	ClusterID         uint64
	EngineAddresses   []string
	BootstrapAttempts int
	BootstrapDelay    time.Duration

	// TransferFee is charged in cents on every P2P transfer.
	TransferFee uint64

	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:           getEnv("APP_NAME", defaultAppName),
		AppEnv:            getEnv("APP_ENV", defaultAppEnv),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		ClusterID:         defaultClusterID,
		EngineAddresses:   splitAddresses(getEnv("TB_ADDRESSES", "3000")),
		BootstrapAttempts: defaultBootstrapAttempts,
		BootstrapDelay:    defaultBootstrapDelay,
		TransferFee:       defaultTransferFee,
		ShutdownPeriod:    defaultShutdownPeriod,
		IdempotencyTTL:    defaultIdempotencyTTL,
	}

	if v := os.Getenv("TB_CLUSTER_ID"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TB_CLUSTER_ID: %w", err)
		}
		cfg.ClusterID = id
	}

	if v := os.Getenv("LEDGER_BOOTSTRAP_ATTEMPTS"); v != "" {
		attempts, err := strconv.Atoi(v)
		if err != nil || attempts < 1 {
			return Config{}, fmt.Errorf("invalid LEDGER_BOOTSTRAP_ATTEMPTS: %q", v)
		}
		cfg.BootstrapAttempts = attempts
	}

	if v := os.Getenv("LEDGER_BOOTSTRAP_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LEDGER_BOOTSTRAP_DELAY: %w", err)
		}
		cfg.BootstrapDelay = d
	}

	if v := os.Getenv("TRANSFER_FEE_CENTS"); v != "" {
		fee, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TRANSFER_FEE_CENTS: %w", err)
		}
		cfg.TransferFee = fee
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
		}
		cfg.IdempotencyTTL = d
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set")
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set")
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a development environment, where
// external dependencies may be replaced with in-memory fallbacks.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func splitAddresses(raw string) []string {
	parts := strings.Split(raw, ",")
	addresses := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			addresses = append(addresses, trimmed)
		}
	}
	return addresses
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
