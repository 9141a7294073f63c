package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		action   domain.Signal
		pos      int64
		prev     domain.AppliedSignal
		shorting bool
		want     step
	}{
		{
			name:   "close while long flattens and resets memory",
			action: domain.SignalClose,
			pos:    5,
			prev:   domain.AppliedBuy,
			want: step{
				outcome: domain.OutcomeClosed,
				flatten: true,
				memory:  domain.AppliedFlat,
				setMem:  true,
			},
		},
		{
			name:   "close while flat skips the brokerage call",
			action: domain.SignalClose,
			pos:    0,
			prev:   domain.AppliedFlat,
			want: step{
				outcome: domain.OutcomeClosed,
				flatten: false,
				memory:  domain.AppliedFlat,
				setMem:  true,
			},
		},
		{
			name:   "duplicate buy is a noop",
			action: domain.SignalBuy,
			pos:    3,
			prev:   domain.AppliedBuy,
			want:   step{outcome: domain.OutcomeNoop},
		},
		{
			name:     "duplicate sell is a noop even with shorting disabled",
			action:   domain.SignalSell,
			pos:      -2,
			prev:     domain.AppliedSell,
			shorting: false,
			want:     step{outcome: domain.OutcomeNoop},
		},
		{
			name:   "buy while short flattens and waits",
			action: domain.SignalBuy,
			pos:    -4,
			prev:   domain.AppliedSell,
			want: step{
				outcome: domain.OutcomeFlattenAndWait,
				flatten: true,
				next:    domain.SignalBuy,
				memory:  domain.AppliedFlat,
				setMem:  true,
			},
		},
		{
			name:   "buy while flat opens long",
			action: domain.SignalBuy,
			pos:    0,
			prev:   domain.AppliedFlat,
			want: step{
				outcome:  domain.OutcomeOpenedLong,
				openSide: domain.OrderSideBuy,
				memory:   domain.AppliedBuy,
				setMem:   true,
			},
		},
		{
			name:   "buy while already long without memory opens long",
			action: domain.SignalBuy,
			pos:    7,
			prev:   domain.AppliedFlat,
			want: step{
				outcome:  domain.OutcomeOpenedLong,
				openSide: domain.OrderSideBuy,
				memory:   domain.AppliedBuy,
				setMem:   true,
			},
		},
		{
			name:     "sell with shorting disabled is acknowledged only",
			action:   domain.SignalSell,
			pos:      10,
			prev:     domain.AppliedBuy,
			shorting: false,
			want:     step{outcome: domain.OutcomeShortsDisabled},
		},
		{
			name:     "sell with shorting disabled while flat",
			action:   domain.SignalSell,
			pos:      0,
			prev:     domain.AppliedFlat,
			shorting: false,
			want:     step{outcome: domain.OutcomeShortsDisabled},
		},
		{
			name:     "sell while long flattens and waits",
			action:   domain.SignalSell,
			pos:      10,
			prev:     domain.AppliedBuy,
			shorting: true,
			want: step{
				outcome: domain.OutcomeFlattenAndWait,
				flatten: true,
				next:    domain.SignalSell,
				memory:  domain.AppliedFlat,
				setMem:  true,
			},
		},
		{
			name:     "sell while flat opens short",
			action:   domain.SignalSell,
			pos:      0,
			prev:     domain.AppliedFlat,
			shorting: true,
			want: step{
				outcome:  domain.OutcomeOpenedShort,
				openSide: domain.OrderSideSell,
				memory:   domain.AppliedSell,
				setMem:   true,
			},
		},
		{
			name:   "unknown action is rejected",
			action: domain.SignalUnknown,
			pos:    0,
			prev:   domain.AppliedFlat,
			want:   step{outcome: domain.OutcomeRejected},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transition(tt.action, tt.pos, tt.prev, tt.shorting)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionDuplicateBeforeShortsDisabled(t *testing.T) {
	// A repeated SELL while short must be suppressed as a duplicate before
	// the shorts-disabled gate is consulted.
	got := transition(domain.SignalSell, -3, domain.AppliedSell, false)
	assert.Equal(t, domain.OutcomeNoop, got.outcome)
}
