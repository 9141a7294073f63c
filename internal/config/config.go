// Package config defines the top-level configuration for the trading bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by TRADINGBOT_* environment
// variables.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Alpaca   AlpacaConfig   `toml:"alpaca"`
	Trading  TradingConfig  `toml:"trading"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Notify   NotifyConfig   `toml:"notify"`
	LogLevel string         `toml:"log_level"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `toml:"port"`
	// WebhookSecret is compared against the "secret" field of every inbound
	// alert body. Empty disables the check.
	WebhookSecret string `toml:"webhook_secret"`
	// APIKey guards the read-only /api endpoints. Empty disables auth.
	APIKey string `toml:"api_key"`
}

// AlpacaConfig holds brokerage endpoints and credentials.
type AlpacaConfig struct {
	BaseURL     string `toml:"base_url"`      // trading API, e.g. https://paper-api.alpaca.markets
	DataBaseURL string `toml:"data_base_url"` // market data API
	StreamURL   string `toml:"stream_url"`    // trade-updates websocket
	KeyID       string `toml:"key_id"`
	SecretKey   string `toml:"secret_key"`
	// RequestsPerSecond caps outbound API calls; 0 disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	StreamEnabled     bool    `toml:"stream_enabled"`
}

// TradingConfig holds the sizing and shorting policy.
type TradingConfig struct {
	// NotionalCapUSD is the dollar amount committed per opened position.
	NotionalCapUSD float64 `toml:"notional_cap_usd"`
	// ShortingEnabled gates SELL-to-open entirely.
	ShortingEnabled bool `toml:"shorting_enabled"`
	// FractionalShorting selects notional sizing for short opens. Most
	// equity brokerages reject fractional shorts, so the default is false
	// and shorts are sized in whole shares.
	FractionalShorting bool `toml:"fractional_shorting"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the decision
// journal. The journal is optional: it is enabled when DSN or Host is set.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether the journal should be wired.
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.DSN) != "" || d.Host != ""
}

// RedisConfig holds Redis connection parameters. When Addr is set, signal
// memory is kept in Redis so replicas share the last-applied state.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// Enabled reports whether the Redis signal store should be wired.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// S3Config holds object storage parameters for journal archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	// RetentionDays is how long decision rows stay in PostgreSQL before
	// being exported and pruned.
	RetentionDays int `toml:"retention_days"`
}

// Enabled reports whether the archiver should be wired.
func (s S3Config) Enabled() bool { return s.Bucket != "" }

// NotifyConfig holds notification channel settings.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns the built-in configuration used before the TOML file and
// environment overrides are applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Alpaca: AlpacaConfig{
			BaseURL:           "https://paper-api.alpaca.markets",
			DataBaseURL:       "https://data.alpaca.markets",
			StreamURL:         "wss://paper-api.alpaca.markets/stream",
			RequestsPerSecond: 3,
			StreamEnabled:     false,
		},
		Trading: TradingConfig{
			NotionalCapUSD:     1000,
			ShortingEnabled:    false,
			FractionalShorting: false,
		},
		Database: DatabaseConfig{
			Port:         5432,
			SSLMode:      "require",
			PoolMaxConns: 4,
			PoolMinConns: 0,
		},
		Redis: RedisConfig{
			PoolSize: 4,
		},
		S3: S3Config{
			Region:        "us-east-1",
			RetentionDays: 90,
		},
		Notify: NotifyConfig{
			Events: []string{"opened", "flattened", "flatten_failed", "order_failed", "order_filled"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if c.Alpaca.BaseURL == "" {
		errs = append(errs, "alpaca: base_url must not be empty")
	}
	if c.Alpaca.DataBaseURL == "" {
		errs = append(errs, "alpaca: data_base_url must not be empty")
	}
	if c.Alpaca.KeyID == "" {
		errs = append(errs, "alpaca: key_id must not be empty")
	}
	if c.Alpaca.SecretKey == "" {
		errs = append(errs, "alpaca: secret_key must not be empty")
	}
	if c.Alpaca.StreamEnabled && c.Alpaca.StreamURL == "" {
		errs = append(errs, "alpaca: stream_url is required when stream_enabled is set")
	}
	if c.Alpaca.RequestsPerSecond < 0 {
		errs = append(errs, "alpaca: requests_per_second must be >= 0")
	}

	if c.Trading.NotionalCapUSD <= 0 {
		errs = append(errs, "trading: notional_cap_usd must be > 0")
	}

	if c.Database.Enabled() {
		if strings.TrimSpace(c.Database.DSN) == "" {
			if c.Database.Database == "" {
				errs = append(errs, "database: database must not be empty (or set database.dsn)")
			}
			if c.Database.Port <= 0 || c.Database.Port > 65535 {
				errs = append(errs, fmt.Sprintf("database: port must be 1-65535, got %d", c.Database.Port))
			}
		}
		if c.Database.PoolMaxConns < 1 {
			errs = append(errs, "database: pool_max_conns must be >= 1")
		}
		if c.Database.PoolMinConns < 0 || c.Database.PoolMinConns > c.Database.PoolMaxConns {
			errs = append(errs, "database: pool_min_conns must be 0..pool_max_conns")
		}
	}

	if c.Redis.Enabled() && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	if c.S3.Enabled() {
		if !c.Database.Enabled() {
			errs = append(errs, "s3: archival requires the database journal (set database.dsn)")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
		if c.S3.RetentionDays < 1 {
			errs = append(errs, "s3: retention_days must be >= 1")
		}
	}

	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
