package engine

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

type fakePrices struct {
	price float64
	err   error
}

func (f *fakePrices) GetLatestTrade(_ context.Context, symbol string) (domain.Trade, error) {
	if f.err != nil {
		return domain.Trade{}, f.err
	}
	return domain.Trade{Symbol: symbol, Price: f.price}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSizeLongNotional(t *testing.T) {
	s := NewSizer(&fakePrices{price: 100}, 1000, false, testLogger())

	spec := s.SizeLong(context.Background(), domain.Alert{Action: domain.SignalBuy, Symbol: "AAPL"})

	assert.Equal(t, domain.OrderSideBuy, spec.Side)
	assert.Equal(t, 1000.0, spec.Notional)
	assert.Zero(t, spec.Qty)
	assert.Equal(t, domain.TimeInForceDay, spec.TimeInForce)
}

func TestSizeLongQtyHint(t *testing.T) {
	s := NewSizer(&fakePrices{price: 100}, 1000, false, testLogger())

	spec := s.SizeLong(context.Background(), domain.Alert{Symbol: "AAPL", Qty: 5})

	assert.Equal(t, int64(5), spec.Qty)
	assert.Zero(t, spec.Notional)
	assert.Equal(t, domain.TimeInForceGTC, spec.TimeInForce)
}

func TestSizeLongSubShareQtyHintFallsBackToNotional(t *testing.T) {
	// A 0.5 share hint truncates to zero whole shares; the order must still
	// carry a size, so sizing falls back to the notional cap.
	s := NewSizer(&fakePrices{price: 100}, 1000, false, testLogger())

	spec := s.SizeLong(context.Background(), domain.Alert{Symbol: "AAPL", Qty: 0.5})

	assert.Zero(t, spec.Qty)
	assert.Equal(t, 1000.0, spec.Notional)
	assert.Equal(t, domain.TimeInForceDay, spec.TimeInForce)
}

func TestSizeLongNotionalHintOverridesCap(t *testing.T) {
	s := NewSizer(&fakePrices{price: 100}, 1000, false, testLogger())

	spec := s.SizeLong(context.Background(), domain.Alert{Symbol: "AAPL", Notional: 250})

	assert.Equal(t, 250.0, spec.Notional)
}

func TestSizeShortWholeShares(t *testing.T) {
	s := NewSizer(&fakePrices{price: 37.50}, 100, false, testLogger())

	spec := s.SizeShort(context.Background(), domain.Alert{Symbol: "XYZ"})

	assert.Equal(t, domain.OrderSideSell, spec.Side)
	assert.Equal(t, int64(2), spec.Qty)
	assert.Zero(t, spec.Notional)
	assert.Equal(t, domain.TimeInForceGTC, spec.TimeInForce)
}

func TestSizeShortPriceFailureFallsBackToOneShare(t *testing.T) {
	s := NewSizer(&fakePrices{err: errors.New("feed down")}, 100, false, testLogger())

	spec := s.SizeShort(context.Background(), domain.Alert{Symbol: "XYZ"})

	assert.Equal(t, int64(1), spec.Qty)
}

func TestSizeShortZeroPriceFallsBackToOneShare(t *testing.T) {
	s := NewSizer(&fakePrices{price: 0}, 100, false, testLogger())

	spec := s.SizeShort(context.Background(), domain.Alert{Symbol: "XYZ"})

	assert.Equal(t, int64(1), spec.Qty)
}

func TestSizeShortExpensivePriceStillOneShare(t *testing.T) {
	// floor(100/250) = 0, clamped to 1.
	s := NewSizer(&fakePrices{price: 250}, 100, false, testLogger())

	spec := s.SizeShort(context.Background(), domain.Alert{Symbol: "XYZ"})

	assert.Equal(t, int64(1), spec.Qty)
}

func TestSizeShortFractional(t *testing.T) {
	s := NewSizer(&fakePrices{price: 37.50}, 100, true, testLogger())

	spec := s.SizeShort(context.Background(), domain.Alert{Symbol: "XYZ"})

	assert.Equal(t, 100.0, spec.Notional)
	assert.Zero(t, spec.Qty)
	assert.Equal(t, domain.TimeInForceDay, spec.TimeInForce)
}

func TestSizeShortQtyHint(t *testing.T) {
	s := NewSizer(&fakePrices{price: 37.50}, 100, true, testLogger())

	spec := s.SizeShort(context.Background(), domain.Alert{Symbol: "XYZ", Qty: 3})

	assert.Equal(t, int64(3), spec.Qty)
	assert.Zero(t, spec.Notional)
	assert.Equal(t, domain.TimeInForceGTC, spec.TimeInForce)
}
