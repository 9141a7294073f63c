package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// StatusHandler serves an operational snapshot: the brokerage account, the
// active trading limits, and process uptime.
type StatusHandler struct {
	broker          domain.Broker
	shortingEnabled bool
	notionalCapUSD  float64
	startedAt       time.Time
	logger          *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(broker domain.Broker, shortingEnabled bool, notionalCapUSD float64, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		broker:          broker,
		shortingEnabled: shortingEnabled,
		notionalCapUSD:  notionalCapUSD,
		startedAt:       time.Now().UTC(),
		logger:          logHandler(logger, "status"),
	}
}

// GetStatus responds with account and configuration state.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"shorting_enabled": h.shortingEnabled,
		"notional_cap_usd": h.notionalCapUSD,
		"uptime":           time.Since(h.startedAt).Round(time.Second).String(),
	}

	account, err := h.broker.GetAccount(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "account snapshot failed",
			slog.String("error", err.Error()),
		)
		resp["account_error"] = err.Error()
	} else {
		resp["account"] = map[string]any{
			"id":             account.ID,
			"equity":         account.Equity,
			"buying_power":   account.BuyingPower,
			"cash":           account.Cash,
			"trading_block":  account.TradingBlock,
			"pattern_day":    account.PatternDay,
			"account_number": account.AccountNumber,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
