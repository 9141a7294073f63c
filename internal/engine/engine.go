// Package engine implements the position-reconciliation state machine: given
// an inbound alert, the live brokerage position, and the last applied signal
// for that symbol, it decides whether to no-op, flatten, flatten-and-wait, or
// open a new position, and performs the resulting orders.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// Notifier is the slice of the notification system the engine uses. A nil
// Notifier disables notifications.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Params bundles the engine's dependencies. Journal, Orders, and Notifier
// are optional.
type Params struct {
	Broker          domain.Broker
	Memory          domain.SignalStore
	Sizer           *Sizer
	Journal         domain.DecisionStore
	Orders          domain.OrderStore
	Notifier        Notifier
	ShortingEnabled bool
	Logger          *slog.Logger
}

// Engine consumes alerts and reconciles them against the brokerage position
// and the per-symbol signal memory. All state reads and writes for one
// symbol happen under that symbol's lock; alerts for different symbols
// proceed in parallel.
type Engine struct {
	broker          domain.Broker
	memory          domain.SignalStore
	sizer           *Sizer
	journal         domain.DecisionStore
	orders          domain.OrderStore
	notifier        Notifier
	locks           *keyedMutex
	shortingEnabled bool
	log             *slog.Logger
}

// New creates an Engine from the given params.
func New(p Params) *Engine {
	return &Engine{
		broker:          p.Broker,
		memory:          p.Memory,
		sizer:           p.Sizer,
		journal:         p.Journal,
		orders:          p.Orders,
		notifier:        p.Notifier,
		locks:           newKeyedMutex(),
		shortingEnabled: p.ShortingEnabled,
		log:             p.Logger.With(slog.String("component", "engine")),
	}
}

// Handle runs one alert through the reconciliation table and performs the
// resulting side effects. The returned Decision carries the outcome tag, the
// submitted order (if any), and the error for rejected or failed alerts.
func (e *Engine) Handle(ctx context.Context, alert domain.Alert) domain.Decision {
	// Tradability gate, before any position or memory read.
	asset, err := e.broker.GetAsset(ctx, alert.Symbol)
	if err != nil || !asset.Tradable {
		dec := domain.Decision{
			Symbol:  alert.Symbol,
			Outcome: domain.OutcomeRejected,
			Err:     fmt.Errorf("symbol %s: %w", alert.Symbol, domain.ErrNotTradable),
		}
		e.log.WarnContext(ctx, "alert rejected, symbol not tradable",
			slog.String("symbol", alert.Symbol),
			slog.Any("error", err),
		)
		e.record(ctx, alert, "", 0, dec)
		return dec
	}

	unlock := e.locks.lock(alert.Symbol)
	defer unlock()

	// Live position is ground truth and is never cached across requests.
	pos := e.positionQty(ctx, alert.Symbol)

	prev, err := e.memory.Get(ctx, alert.Symbol)
	if err != nil {
		e.log.WarnContext(ctx, "signal memory read failed, assuming flat",
			slog.String("symbol", alert.Symbol),
			slog.String("error", err.Error()),
		)
		prev = domain.AppliedFlat
	}

	st := transition(alert.Action, pos, prev, e.shortingEnabled)

	dec := domain.Decision{Symbol: alert.Symbol, Outcome: st.outcome, Next: st.next}
	if st.outcome == domain.OutcomeRejected {
		dec.Err = fmt.Errorf("unrecognized action %q", alert.Action)
	}

	if st.flatten {
		e.flatten(ctx, alert.Symbol, pos)
	}

	if st.openSide != "" {
		if !e.submit(ctx, alert, st, &dec) {
			// Order failed: memory keeps its pre-call value so the next
			// identical alert retries instead of being suppressed.
			e.record(ctx, alert, prev, pos, dec)
			return dec
		}
	}

	if st.setMem {
		if err := e.memory.Set(ctx, alert.Symbol, st.memory); err != nil {
			e.log.ErrorContext(ctx, "signal memory update failed",
				slog.String("symbol", alert.Symbol),
				slog.String("error", err.Error()),
			)
		}
	}

	e.log.InfoContext(ctx, "alert reconciled",
		slog.String("symbol", alert.Symbol),
		slog.String("action", string(alert.Action)),
		slog.String("prev", string(prev)),
		slog.Int64("position", pos),
		slog.String("outcome", string(dec.Outcome)),
	)
	e.record(ctx, alert, prev, pos, dec)
	return dec
}

// flatten closes the symbol's position. A failure is the CloseFailed case:
// it is logged and notified but never aborts the request, and memory is
// still reset so the next alert re-reads the live position as ground truth.
func (e *Engine) flatten(ctx context.Context, symbol string, pos int64) {
	if err := e.broker.ClosePosition(ctx, symbol); err != nil {
		e.log.ErrorContext(ctx, "flatten failed",
			slog.String("symbol", symbol),
			slog.Int64("position", pos),
			slog.String("error", err.Error()),
		)
		e.notify(ctx, "flatten_failed", "Flatten failed",
			fmt.Sprintf("%s: close of %d failed: %v", symbol, pos, err))
		return
	}
	e.notify(ctx, "flattened", "Position flattened",
		fmt.Sprintf("%s: closed position of %d", symbol, pos))
}

// submit sizes and places the opening order. It returns false when
// submission failed, in which case dec has been rewritten as an
// order_failed outcome.
func (e *Engine) submit(ctx context.Context, alert domain.Alert, st step, dec *domain.Decision) bool {
	var spec domain.OrderSpec
	if st.openSide == domain.OrderSideBuy {
		spec = e.sizer.SizeLong(ctx, alert)
	} else {
		spec = e.sizer.SizeShort(ctx, alert)
	}

	clientID := uuid.New().String()
	brokerID, err := e.broker.SubmitOrder(ctx, spec, clientID)
	if err != nil {
		dec.Outcome = domain.OutcomeOrderFailed
		dec.Order = &spec
		dec.Err = err
		e.log.ErrorContext(ctx, "order submission failed",
			slog.String("symbol", spec.Symbol),
			slog.String("side", string(spec.Side)),
			slog.String("error", err.Error()),
		)
		e.notify(ctx, "order_failed", "Order failed",
			fmt.Sprintf("%s %s: %v", spec.Symbol, spec.Side, err))
		return false
	}

	dec.Order = &spec
	dec.OrderID = clientID

	if e.orders != nil {
		rec := domain.OrderRecord{
			ID:            clientID,
			BrokerOrderID: brokerID,
			Symbol:        spec.Symbol,
			Side:          spec.Side,
			Notional:      spec.Notional,
			Qty:           spec.Qty,
			TimeInForce:   spec.TimeInForce,
			Status:        domain.OrderStatusSubmitted,
			CreatedAt:     time.Now().UTC(),
		}
		if err := e.orders.Create(ctx, rec); err != nil {
			e.log.ErrorContext(ctx, "order journal write failed",
				slog.String("order_id", clientID),
				slog.String("error", err.Error()),
			)
		}
	}

	e.notify(ctx, "opened", "Position opened",
		fmt.Sprintf("%s %s %s", spec.Symbol, spec.Side, describeSize(spec)))
	return true
}

// record appends the decision to the journal when one is configured.
func (e *Engine) record(ctx context.Context, alert domain.Alert, prev domain.AppliedSignal, pos int64, dec domain.Decision) {
	if e.journal == nil {
		return
	}

	detail := ""
	if dec.Err != nil {
		detail = dec.Err.Error()
	} else if dec.Next != "" {
		detail = "next=" + string(dec.Next)
	}

	rec := domain.DecisionRecord{
		ID:        uuid.New().String(),
		Symbol:    alert.Symbol,
		Action:    alert.Action,
		Prev:      prev,
		Position:  pos,
		Outcome:   dec.Outcome,
		OrderID:   dec.OrderID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.journal.Insert(ctx, rec); err != nil {
		e.log.ErrorContext(ctx, "decision journal write failed",
			slog.String("symbol", alert.Symbol),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) notify(ctx context.Context, event, title, message string) {
	if e.notifier == nil {
		return
	}
	// Notification failures are the sender's problem, not the alert's.
	if err := e.notifier.Notify(ctx, event, title, message); err != nil && !errors.Is(err, context.Canceled) {
		e.log.WarnContext(ctx, "notification failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

func describeSize(spec domain.OrderSpec) string {
	if spec.Notional > 0 {
		return fmt.Sprintf("$%.2f notional (%s)", spec.Notional, spec.TimeInForce)
	}
	return fmt.Sprintf("%d shares (%s)", spec.Qty, spec.TimeInForce)
}
