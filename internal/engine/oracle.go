package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// positionQty returns the signed quantity currently held in symbol. It
// deliberately collapses "not found" and "query error" into 0: a missing
// position must never be mistaken for an error that halts trading, so
// lookups fail open to flat. Fractional holdings round away from zero so a
// sub-share position still reports its sign.
func (e *Engine) positionQty(ctx context.Context, symbol string) int64 {
	pos, err := e.broker.GetPosition(ctx, symbol)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			e.log.WarnContext(ctx, "position lookup failed, treating as flat",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
		return 0
	}

	qty := int64(pos.Qty)
	if qty == 0 && pos.Qty > 0 {
		qty = 1
	}
	if qty == 0 && pos.Qty < 0 {
		qty = -1
	}
	return qty
}
