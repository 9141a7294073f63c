package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// PositionHandler serves live brokerage positions.
type PositionHandler struct {
	broker domain.Broker
	logger *slog.Logger
}

// NewPositionHandler creates a PositionHandler.
func NewPositionHandler(broker domain.Broker, logger *slog.Logger) *PositionHandler {
	return &PositionHandler{
		broker: broker,
		logger: logHandler(logger, "positions"),
	}
}

// ListPositions returns all open positions from the brokerage.
// GET /api/positions
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.broker.ListPositions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list positions failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "brokerage positions unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"positions": positions,
		"count":     len(positions),
	})
}

// GetPosition returns the live position for one symbol. A flat symbol
// responds 404.
// GET /api/positions/{symbol}
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	pos, err := h.broker.GetPosition(r.Context(), symbol)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no open position")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get position failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "brokerage position unavailable")
		return
	}

	writeJSON(w, http.StatusOK, pos)
}
