package domain

import "strings"

// Signal is the action requested by an inbound alert.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalClose   Signal = "CLOSE"
	SignalUnknown Signal = "UNKNOWN"
)

// ParseSignal maps the raw alert string onto a Signal. Anything that is not
// BUY, SELL, or CLOSE (case-insensitive) parses as SignalUnknown.
func ParseSignal(raw string) Signal {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY":
		return SignalBuy
	case "SELL":
		return SignalSell
	case "CLOSE":
		return SignalClose
	default:
		return SignalUnknown
	}
}

// AppliedSignal is the per-symbol record of the last signal the engine acted
// on, not merely received. The default for an unseen symbol is AppliedFlat.
type AppliedSignal string

const (
	AppliedFlat AppliedSignal = "FLAT"
	AppliedBuy  AppliedSignal = "BUY"
	AppliedSell AppliedSignal = "SELL"
)

// Matches reports whether an inbound signal duplicates the applied one.
func (a AppliedSignal) Matches(s Signal) bool {
	return (a == AppliedBuy && s == SignalBuy) || (a == AppliedSell && s == SignalSell)
}

// Alert is the parsed inbound webhook payload handed to the engine.
type Alert struct {
	Action   Signal
	Symbol   string
	Qty      float64 // optional whole-share override, 0 when absent
	Notional float64 // optional notional override in USD, 0 when absent
}
