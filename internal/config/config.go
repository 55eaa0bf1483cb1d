package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	Environment     string
	Database        DatabaseConfig
	Gateway         GatewayConfig
	Admin           AdminConfig
	Outbox          OutboxConfig
	LogLevel        string
	NotifyTargetURL string // NOTIFY_TARGET_URL: delivery subsystem endpoint for settlement notifications; empty disables HTTP notify
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// GatewayConfig is used to call the mobile-money/card payment provider
type GatewayConfig struct {
	BaseURL       string // e.g. https://gateway.example.com
	MerchantKey   string // GATEWAY_MERCHANT_KEY
	WebhookSecret string // GATEWAY_WEBHOOK_SECRET: HMAC key for incoming callbacks; empty disables verification
	CallbackURL   string // public URL the provider redirects back to after payment
	Currency      string // settlement currency, e.g. XOF
	Timeout       time.Duration
}

type AdminConfig struct {
	APIKeyHash string // bcrypt hash of the back-office API key
}

// OutboxConfig tunes the background side-effect dispatcher
type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "cechemoi"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Gateway: GatewayConfig{
			BaseURL:       strings.TrimSpace(getEnvOrViper("GATEWAY_BASE_URL", "")),
			MerchantKey:   strings.TrimSpace(getEnvOrViper("GATEWAY_MERCHANT_KEY", "")),
			WebhookSecret: strings.TrimSpace(getEnvOrViper("GATEWAY_WEBHOOK_SECRET", "")),
			CallbackURL:   strings.TrimSpace(getEnvOrViper("GATEWAY_CALLBACK_URL", "")),
			Currency:      getEnvOrViper("GATEWAY_CURRENCY", "XOF"),
			Timeout:       getDurationOrViper("GATEWAY_TIMEOUT", 30*time.Second),
		},
		Admin: AdminConfig{
			APIKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		},
		Outbox: OutboxConfig{
			PollInterval: getDurationOrViper("OUTBOX_POLL_INTERVAL", 5*time.Second),
			BatchSize:    viper.GetInt("OUTBOX_BATCH_SIZE"),
			MaxAttempts:  viper.GetInt("OUTBOX_MAX_ATTEMPTS"),
		},
		LogLevel:        getEnvOrViper("LOG_LEVEL", "info"),
		NotifyTargetURL: strings.TrimSpace(getEnvOrViper("NOTIFY_TARGET_URL", "")),
	}

	if cfg.Outbox.BatchSize <= 0 {
		cfg.Outbox.BatchSize = 50
	}
	if cfg.Outbox.MaxAttempts <= 0 {
		cfg.Outbox.MaxAttempts = 5
	}

	// Validate required fields
	if cfg.Gateway.BaseURL == "" {
		return nil, fmt.Errorf("GATEWAY_BASE_URL is required")
	}
	if cfg.Gateway.MerchantKey == "" {
		return nil, fmt.Errorf("GATEWAY_MERCHANT_KEY is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getDurationOrViper(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
