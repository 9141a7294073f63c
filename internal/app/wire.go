package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/hardikramesh/tradingbot1/internal/blob/s3"
	"github.com/hardikramesh/tradingbot1/internal/cache/redis"
	"github.com/hardikramesh/tradingbot1/internal/config"
	"github.com/hardikramesh/tradingbot1/internal/domain"
	"github.com/hardikramesh/tradingbot1/internal/engine"
	"github.com/hardikramesh/tradingbot1/internal/notify"
	"github.com/hardikramesh/tradingbot1/internal/platform/alpaca"
	"github.com/hardikramesh/tradingbot1/internal/store/postgres"
)

// Dependencies bundles everything the running application needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Broker domain.Broker

	// Memory is the signal store: in-process by default, Redis-backed when
	// configured.
	Memory domain.SignalStore

	// Journal and Orders are nil when no database is configured.
	Journal domain.DecisionStore
	Orders  domain.OrderStore

	// Archiver is nil unless both the database and S3 are configured.
	Archiver *s3blob.Archiver

	// Stream is nil unless the trade-updates stream is enabled.
	Stream *alpaca.StreamClient

	Notifier *notify.Notifier
	Engine   *engine.Engine
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Brokerage REST client ---
	broker := alpaca.NewClient(alpaca.ClientConfig{
		BaseURL:           cfg.Alpaca.BaseURL,
		DataBaseURL:       cfg.Alpaca.DataBaseURL,
		KeyID:             cfg.Alpaca.KeyID,
		SecretKey:         cfg.Alpaca.SecretKey,
		RequestsPerSecond: cfg.Alpaca.RequestsPerSecond,
	})
	deps.Broker = broker

	// --- Signal memory ---
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Memory = redis.NewSignalStore(redisClient)
	} else {
		deps.Memory = engine.NewMemory()
	}

	// --- PostgreSQL journal ---
	if cfg.Database.Enabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Database.DSN,
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Database,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: cfg.Database.PoolMaxConns,
			MinConns: cfg.Database.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Database.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.Journal = postgres.NewDecisionStore(pool)
		deps.Orders = postgres.NewOrderStore(pool)
	}

	// --- S3 archival (requires the journal) ---
	if cfg.S3.Enabled() && deps.Journal != nil {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		retention := time.Duration(cfg.S3.RetentionDays) * 24 * time.Hour
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), deps.Journal, retention, logger)
	}

	// --- Trade-updates stream ---
	if cfg.Alpaca.StreamEnabled {
		deps.Stream = alpaca.NewStreamClient(cfg.Alpaca.StreamURL, cfg.Alpaca.KeyID, cfg.Alpaca.SecretKey)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Reconciliation engine ---
	sizer := engine.NewSizer(broker, cfg.Trading.NotionalCapUSD, cfg.Trading.FractionalShorting, logger)
	deps.Engine = engine.New(engine.Params{
		Broker:          broker,
		Memory:          deps.Memory,
		Sizer:           sizer,
		Journal:         deps.Journal,
		Orders:          deps.Orders,
		Notifier:        deps.Notifier,
		ShortingEnabled: cfg.Trading.ShortingEnabled,
		Logger:          logger,
	})

	return deps, cleanup, nil
}
