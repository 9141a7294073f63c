package engine

import (
	"context"
	"sync"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// Memory is the in-process domain.SignalStore. State is volatile by design:
// it resets on restart, and the brokerage's live position is always
// re-queried as ground truth, so a restart can at worst cost one extra
// flatten-and-wait round trip. Entries are never deleted; the map is bounded
// by the set of symbols ever traded.
type Memory struct {
	mu   sync.RWMutex
	last map[string]domain.AppliedSignal
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{last: make(map[string]domain.AppliedSignal)}
}

// Get returns the last applied signal for symbol, defaulting to AppliedFlat
// for symbols never seen.
func (m *Memory) Get(_ context.Context, symbol string) (domain.AppliedSignal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sig, ok := m.last[symbol]; ok {
		return sig, nil
	}
	return domain.AppliedFlat, nil
}

// Set records the last applied signal for symbol.
func (m *Memory) Set(_ context.Context, symbol string, sig domain.AppliedSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[symbol] = sig
	return nil
}

// Compile-time interface check.
var _ domain.SignalStore = (*Memory)(nil)
