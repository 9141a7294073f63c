package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// SignalStore implements domain.SignalStore on Redis so that the last-applied
// signal survives restarts and can be shared between replicas. Each symbol is
// stored as a plain string at key "signal:{symbol}"; an absent key reads as
// FLAT, matching the in-memory store's default for an unseen symbol.
type SignalStore struct {
	rdb *redis.Client
}

// NewSignalStore creates a SignalStore backed by the given Client.
func NewSignalStore(c *Client) *SignalStore {
	return &SignalStore{rdb: c.rdb}
}

func signalKey(symbol string) string {
	return "signal:" + symbol
}

// Get returns the last applied signal for a symbol, or AppliedFlat when the
// symbol has never been written.
func (s *SignalStore) Get(ctx context.Context, symbol string) (domain.AppliedSignal, error) {
	val, err := s.rdb.Get(ctx, signalKey(symbol)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.AppliedFlat, nil
	}
	if err != nil {
		return domain.AppliedFlat, fmt.Errorf("redis: get signal %s: %w", symbol, err)
	}

	switch domain.AppliedSignal(val) {
	case domain.AppliedBuy, domain.AppliedSell, domain.AppliedFlat:
		return domain.AppliedSignal(val), nil
	default:
		return domain.AppliedFlat, fmt.Errorf("redis: get signal %s: unexpected value %q", symbol, val)
	}
}

// Set records the last applied signal for a symbol. Entries never expire; the
// symbol universe is small.
func (s *SignalStore) Set(ctx context.Context, symbol string, sig domain.AppliedSignal) error {
	if err := s.rdb.Set(ctx, signalKey(symbol), string(sig), 0).Err(); err != nil {
		return fmt.Errorf("redis: set signal %s: %w", symbol, err)
	}
	return nil
}

var _ domain.SignalStore = (*SignalStore)(nil)
