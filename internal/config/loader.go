package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRADINGBOT_* environment variable overrides, and
// returns the final Config. A missing file is not an error; the bot can run
// from environment variables alone. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRADINGBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "TRADINGBOT_SERVER_PORT")
	setStr(&cfg.Server.WebhookSecret, "TRADINGBOT_WEBHOOK_SECRET")
	setStr(&cfg.Server.APIKey, "TRADINGBOT_API_KEY")

	// ── Alpaca ──
	setStr(&cfg.Alpaca.BaseURL, "TRADINGBOT_ALPACA_BASE_URL")
	setStr(&cfg.Alpaca.DataBaseURL, "TRADINGBOT_ALPACA_DATA_BASE_URL")
	setStr(&cfg.Alpaca.StreamURL, "TRADINGBOT_ALPACA_STREAM_URL")
	setStr(&cfg.Alpaca.KeyID, "TRADINGBOT_ALPACA_KEY_ID")
	setStr(&cfg.Alpaca.KeyID, "APCA_API_KEY_ID") // brokerage-standard alias
	setStr(&cfg.Alpaca.SecretKey, "TRADINGBOT_ALPACA_SECRET_KEY")
	setStr(&cfg.Alpaca.SecretKey, "APCA_API_SECRET_KEY") // brokerage-standard alias
	setFloat64(&cfg.Alpaca.RequestsPerSecond, "TRADINGBOT_ALPACA_REQUESTS_PER_SECOND")
	setBool(&cfg.Alpaca.StreamEnabled, "TRADINGBOT_ALPACA_STREAM_ENABLED")

	// ── Trading ──
	setFloat64(&cfg.Trading.NotionalCapUSD, "TRADINGBOT_TRADING_NOTIONAL_CAP_USD")
	setBool(&cfg.Trading.ShortingEnabled, "TRADINGBOT_TRADING_SHORTING_ENABLED")
	setBool(&cfg.Trading.FractionalShorting, "TRADINGBOT_TRADING_FRACTIONAL_SHORTING")

	// ── Database ──
	setStr(&cfg.Database.DSN, "TRADINGBOT_DATABASE_DSN")
	setStr(&cfg.Database.Host, "TRADINGBOT_DATABASE_HOST")
	setInt(&cfg.Database.Port, "TRADINGBOT_DATABASE_PORT")
	setStr(&cfg.Database.Database, "TRADINGBOT_DATABASE_NAME")
	setStr(&cfg.Database.User, "TRADINGBOT_DATABASE_USER")
	setStr(&cfg.Database.Password, "TRADINGBOT_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "TRADINGBOT_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "TRADINGBOT_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "TRADINGBOT_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "TRADINGBOT_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "TRADINGBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TRADINGBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRADINGBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TRADINGBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "TRADINGBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "TRADINGBOT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "TRADINGBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "TRADINGBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "TRADINGBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "TRADINGBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "TRADINGBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "TRADINGBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "TRADINGBOT_S3_FORCE_PATH_STYLE")
	setInt(&cfg.S3.RetentionDays, "TRADINGBOT_S3_RETENTION_DAYS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "TRADINGBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "TRADINGBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "TRADINGBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "TRADINGBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "TRADINGBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
