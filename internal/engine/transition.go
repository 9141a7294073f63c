package engine

import "github.com/hardikramesh/tradingbot1/internal/domain"

// step is the outcome of the pure transition function: what to do, and what
// the signal memory should hold afterwards. Side effects (flatten, submit)
// are performed by the engine so the table itself stays unit-testable
// without a brokerage connection.
type step struct {
	outcome  domain.Outcome
	flatten  bool             // close the position before returning
	openSide domain.OrderSide // "" when no order is submitted
	next     domain.Signal    // expected follow-up for flatten_and_wait
	memory   domain.AppliedSignal
	setMem   bool // false leaves memory unchanged
}

// transition evaluates the reconciliation table for one alert. Rules are
// checked strictly in order; the first match wins. In particular duplicate
// suppression is evaluated before the shorts-disabled gate, so a repeated
// SELL is a noop even when shorting is off.
func transition(action domain.Signal, pos int64, prev domain.AppliedSignal, shortingEnabled bool) step {
	switch {
	// 1. CLOSE always flattens; a close on an already-flat symbol is an
	// idempotent success that never reaches the brokerage.
	case action == domain.SignalClose:
		return step{
			outcome: domain.OutcomeClosed,
			flatten: pos != 0,
			memory:  domain.AppliedFlat,
			setMem:  true,
		}

	// 2. Duplicate of the last applied signal.
	case prev.Matches(action):
		return step{outcome: domain.OutcomeNoop}

	// 3. BUY while short: flatten now, open on the next identical alert.
	// Reversing in one call risks a wash-trade rejection and obscures the
	// fill price used for sizing.
	case action == domain.SignalBuy && pos < 0:
		return step{
			outcome: domain.OutcomeFlattenAndWait,
			flatten: true,
			next:    domain.SignalBuy,
			memory:  domain.AppliedFlat,
			setMem:  true,
		}

	// 4. BUY while flat or already long.
	case action == domain.SignalBuy:
		return step{
			outcome:  domain.OutcomeOpenedLong,
			openSide: domain.OrderSideBuy,
			memory:   domain.AppliedBuy,
			setMem:   true,
		}

	// 5. SELL with shorting off is acknowledged but does nothing.
	case action == domain.SignalSell && !shortingEnabled:
		return step{outcome: domain.OutcomeShortsDisabled}

	// 6. SELL while long: flatten now, open short on the next alert.
	case action == domain.SignalSell && pos > 0:
		return step{
			outcome: domain.OutcomeFlattenAndWait,
			flatten: true,
			next:    domain.SignalSell,
			memory:  domain.AppliedFlat,
			setMem:  true,
		}

	// 7. SELL while flat or already short.
	case action == domain.SignalSell:
		return step{
			outcome:  domain.OutcomeOpenedShort,
			openSide: domain.OrderSideSell,
			memory:   domain.AppliedSell,
			setMem:   true,
		}

	// 8. Unrecognized action.
	default:
		return step{outcome: domain.OutcomeRejected}
	}
}
