package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAppName        = "KivuCash"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultCurrency       = "XAF"
	defaultSeedBalance    = int64(1_000_000)
	defaultHistoryLimit   = 200
	defaultSessionTTL     = 12 * time.Hour
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultWalletCacheTTL = 30 * time.Second
	defaultPayoutTimeout  = 30 * time.Second
	defaultLookupTimeout  = 15 * time.Second
)

// Config captures application runtime configuration loaded from environment
// variables. It is populated once at startup and passed by value; nothing
// reads the environment after Load returns.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string
	RedisURL string

	// Payout gateway credentials and identity presented to the PSP.
	GatewayBaseURL string
	GatewayToken   string
	MerchantID     string
	WalletID       string

	// Wallet seed and feature switches.
	Currency           string
	SeedBalance        int64
	WithdrawalsEnabled bool
	HistoryLimit       int

	// Panel session settings.
	SessionSecret     string
	SessionTTL        time.Duration
	PanelPasswordHash []byte

	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	WalletCacheTTL time.Duration
	PayoutTimeout  time.Duration
	LookupTimeout  time.Duration
}

// Load reads configuration values from the environment and populates a
// Config instance, applying defaults for optional values and failing on
// missing credentials.
func Load() (Config, error) {
	cfg := Config{
		AppName:            getEnv("APP_NAME", defaultAppName),
		AppEnv:             getEnv("APP_ENV", defaultAppEnv),
		Port:               getEnv("PORT", defaultPort),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		RedisURL:           os.Getenv("REDIS_URL"),
		GatewayBaseURL:     strings.TrimRight(os.Getenv("GATEWAY_BASE_URL"), "/"),
		GatewayToken:       os.Getenv("GATEWAY_TOKEN"),
		MerchantID:         os.Getenv("GATEWAY_MERCHANT_ID"),
		WalletID:           os.Getenv("GATEWAY_WALLET_ID"),
		Currency:           getEnv("WALLET_CURRENCY", defaultCurrency),
		SeedBalance:        defaultSeedBalance,
		WithdrawalsEnabled: true,
		HistoryLimit:       defaultHistoryLimit,
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		SessionTTL:         defaultSessionTTL,
		ShutdownPeriod:     defaultShutdownDelay,
		IdempotencyTTL:     defaultIdempotencyTTL,
		WalletCacheTTL:     defaultWalletCacheTTL,
		PayoutTimeout:      defaultPayoutTimeout,
		LookupTimeout:      defaultLookupTimeout,
	}

	if v := os.Getenv("SEED_BALANCE"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEED_BALANCE: %w", err)
		}
		if seed < 0 {
			return Config{}, fmt.Errorf("SEED_BALANCE must not be negative")
		}
		cfg.SeedBalance = seed
	}

	if v := os.Getenv("WITHDRAWALS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WITHDRAWALS_ENABLED: %w", err)
		}
		cfg.WithdrawalsEnabled = enabled
	}

	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HISTORY_LIMIT: %w", err)
		}
		cfg.HistoryLimit = limit
	}

	for _, d := range []struct {
		envVar string
		target *time.Duration
	}{
		{"SESSION_TTL", &cfg.SessionTTL},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownPeriod},
		{"IDEMPOTENCY_TTL", &cfg.IdempotencyTTL},
		{"WALLET_CACHE_TTL", &cfg.WalletCacheTTL},
		{"PAYOUT_TIMEOUT", &cfg.PayoutTimeout},
		{"LOOKUP_TIMEOUT", &cfg.LookupTimeout},
	} {
		if v := os.Getenv(d.envVar); v != "" {
			dur, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.envVar, err)
			}
			*d.target = dur
		}
	}

	if cfg.GatewayBaseURL == "" {
		return Config{}, fmt.Errorf("GATEWAY_BASE_URL must be set")
	}
	if cfg.GatewayToken == "" {
		return Config{}, fmt.Errorf("GATEWAY_TOKEN must be set")
	}
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET must be set")
	}

	if hash := os.Getenv("PANEL_PASSWORD_HASH"); hash != "" {
		cfg.PanelPasswordHash = []byte(hash)
	} else if plain := os.Getenv("PANEL_PASSWORD"); plain != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return Config{}, fmt.Errorf("hash PANEL_PASSWORD: %w", err)
		}
		cfg.PanelPasswordHash = hashed
	} else {
		return Config{}, fmt.Errorf("PANEL_PASSWORD or PANEL_PASSWORD_HASH must be set")
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
