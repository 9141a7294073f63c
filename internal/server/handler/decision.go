package handler

import (
	"log/slog"
	"net/http"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// DecisionHandler serves the decision journal. It is nil-safe at the server
// level: the route is only registered when a journal is configured.
type DecisionHandler struct {
	journal domain.DecisionStore
	orders  domain.OrderStore
	logger  *slog.Logger
}

// NewDecisionHandler creates a DecisionHandler.
func NewDecisionHandler(journal domain.DecisionStore, orders domain.OrderStore, logger *slog.Logger) *DecisionHandler {
	return &DecisionHandler{
		journal: journal,
		orders:  orders,
		logger:  logHandler(logger, "decisions"),
	}
}

// ListDecisions returns recent decisions, optionally filtered by symbol.
// GET /api/decisions?symbol=AAPL&limit=50&offset=0
func (h *DecisionHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	var (
		recs []domain.DecisionRecord
		err  error
	)
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		recs, err = h.journal.ListBySymbol(r.Context(), symbol, opts)
	} else {
		recs, err = h.journal.ListRecent(r.Context(), opts)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list decisions failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "decision journal unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"decisions": recs,
		"count":     len(recs),
	})
}

// ListOrders returns recent submitted orders with their fill state.
// GET /api/orders?limit=50&offset=0
func (h *DecisionHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	recs, err := h.orders.ListRecent(r.Context(), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list orders failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "order journal unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": recs,
		"count":  len(recs),
	})
}
