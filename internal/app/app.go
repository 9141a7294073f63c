// Package app owns the application lifecycle: it wires the brokerage client,
// signal memory, journal, archiver, notifier, and engine together, starts the
// HTTP server and background loops, and tears everything down on shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hardikramesh/tradingbot1/internal/config"
	"github.com/hardikramesh/tradingbot1/internal/domain"
	"github.com/hardikramesh/tradingbot1/internal/notify"
	"github.com/hardikramesh/tradingbot1/internal/platform/alpaca"
	"github.com/hardikramesh/tradingbot1/internal/server"
	"github.com/hardikramesh/tradingbot1/internal/server/handler"
)

// archiveInterval is how often the journal archiver looks for rows past the
// retention window.
const archiveInterval = 6 * time.Hour

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the HTTP server and background loops,
// and blocks until the context is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.Int("port", a.cfg.Server.Port),
		slog.Bool("shorting_enabled", a.cfg.Trading.ShortingEnabled),
		slog.Bool("journal", a.cfg.Database.Enabled()),
		slog.Bool("stream", a.cfg.Alpaca.StreamEnabled),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	srv := a.buildServer(deps)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if deps.Stream != nil {
		deps.Stream.OnTradeUpdate(a.makeFillRecorder(deps.Orders, deps.Notifier))
		g.Go(func() error {
			if err := deps.Stream.Connect(ctx); err != nil {
				// The stream is best-effort: fills stay in "submitted" until
				// the next restart rather than taking the webhook down.
				a.logger.ErrorContext(ctx, "trade-updates stream unavailable",
					slog.String("error", err.Error()),
				)
				return nil
			}
			<-ctx.Done()
			return deps.Stream.Close()
		})
	}

	if deps.Archiver != nil {
		g.Go(func() error {
			err := deps.Archiver.Run(ctx, archiveInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close tears down all resources in reverse registration order. Safe to call
// multiple times.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// buildServer assembles the HTTP handlers around the wired dependencies.
func (a *App) buildServer(deps *Dependencies) *server.Server {
	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(),
		Webhook:   handler.NewWebhookHandler(deps.Engine, a.cfg.Server.WebhookSecret, a.logger),
		Status:    handler.NewStatusHandler(deps.Broker, a.cfg.Trading.ShortingEnabled, a.cfg.Trading.NotionalCapUSD, a.logger),
		Positions: handler.NewPositionHandler(deps.Broker, a.logger),
	}
	if deps.Journal != nil {
		handlers.Decisions = handler.NewDecisionHandler(deps.Journal, deps.Orders, a.logger)
	}

	return server.NewServer(server.Config{
		Port:   a.cfg.Server.Port,
		APIKey: a.cfg.Server.APIKey,
	}, handlers, a.logger)
}

// makeFillRecorder returns the trade-updates handler that journals order
// lifecycle events. With no order store the updates are only logged.
func (a *App) makeFillRecorder(orders domain.OrderStore, notifier *notify.Notifier) alpaca.TradeUpdateHandler {
	return func(u alpaca.TradeUpdate) {
		a.logger.Info("trade update",
			slog.String("event", u.Event),
			slog.String("symbol", u.Symbol),
			slog.String("client_order_id", u.ClientOrderID),
			slog.Float64("filled_qty", u.FilledQty),
		)

		if u.Event == "fill" && notifier != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = notifier.Notify(ctx, "order_filled", "Order filled",
				fmt.Sprintf("%s: %.4f @ %.2f", u.Symbol, u.FilledQty, u.FilledAvgPrice))
			cancel()
		}

		if orders == nil || u.ClientOrderID == "" {
			return
		}

		var status domain.OrderStatus
		var filledAt *time.Time
		switch u.Event {
		case "fill":
			status = domain.OrderStatusFilled
			at := u.At
			if at.IsZero() {
				at = time.Now().UTC()
			}
			filledAt = &at
		case "partial_fill":
			status = domain.OrderStatusSubmitted
		case "canceled":
			status = domain.OrderStatusCancelled
		case "rejected":
			status = domain.OrderStatusRejected
		default:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := orders.UpdateFill(ctx, u.ClientOrderID, status, u.FilledQty, u.FilledAvgPrice, filledAt); err != nil {
			a.logger.Error("order fill journal write failed",
				slog.String("client_order_id", u.ClientOrderID),
				slog.String("error", err.Error()),
			)
		}
	}
}
