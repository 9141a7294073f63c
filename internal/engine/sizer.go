package engine

import (
	"context"
	"log/slog"
	"math"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// PriceLookup is the slice of the brokerage the sizer needs.
type PriceLookup interface {
	GetLatestTrade(ctx context.Context, symbol string) (domain.Trade, error)
}

// Sizer computes the order specification for a new position. Long opens use
// notional sizing (fixed USD, brokerage computes fractional shares, DAY
// time-in-force). Short opens use notional sizing only when fractional
// shorting is permitted; otherwise they are sized in whole shares from the
// latest trade price, with GTC time-in-force.
type Sizer struct {
	prices             PriceLookup
	notionalCapUSD     float64
	fractionalShorting bool
	log                *slog.Logger
}

// NewSizer creates a Sizer over the given price source.
func NewSizer(prices PriceLookup, notionalCapUSD float64, fractionalShorting bool, logger *slog.Logger) *Sizer {
	return &Sizer{
		prices:             prices,
		notionalCapUSD:     notionalCapUSD,
		fractionalShorting: fractionalShorting,
		log:                logger.With(slog.String("component", "sizer")),
	}
}

// SizeLong builds the order spec for opening a long. An explicit qty hint in
// the alert selects whole-share sizing; an explicit notional hint overrides
// the configured cap. A sub-share qty hint truncates to zero and falls
// through to notional sizing so the order always carries a size.
func (s *Sizer) SizeLong(_ context.Context, alert domain.Alert) domain.OrderSpec {
	if qty := int64(alert.Qty); qty > 0 {
		return domain.OrderSpec{
			Symbol:      alert.Symbol,
			Side:        domain.OrderSideBuy,
			Qty:         qty,
			TimeInForce: domain.TimeInForceGTC,
		}
	}

	notional := s.notionalCapUSD
	if alert.Notional > 0 {
		notional = alert.Notional
	}
	return domain.OrderSpec{
		Symbol:      alert.Symbol,
		Side:        domain.OrderSideBuy,
		Notional:    notional,
		TimeInForce: domain.TimeInForceDay, // fractional orders must be DAY
	}
}

// SizeShort builds the order spec for opening a short. When fractional
// shorting is not permitted the quantity is floor(cap/price), at least one
// share; a failed or non-positive price lookup falls back to a single share
// rather than blocking the trade on a transient price-feed fault.
func (s *Sizer) SizeShort(ctx context.Context, alert domain.Alert) domain.OrderSpec {
	if s.fractionalShorting && alert.Qty <= 0 {
		notional := s.notionalCapUSD
		if alert.Notional > 0 {
			notional = alert.Notional
		}
		return domain.OrderSpec{
			Symbol:      alert.Symbol,
			Side:        domain.OrderSideSell,
			Notional:    notional,
			TimeInForce: domain.TimeInForceDay,
		}
	}

	qty := int64(alert.Qty)
	if qty <= 0 {
		qty = s.wholeShareQty(ctx, alert)
	}
	return domain.OrderSpec{
		Symbol:      alert.Symbol,
		Side:        domain.OrderSideSell,
		Qty:         qty,
		TimeInForce: domain.TimeInForceGTC,
	}
}

func (s *Sizer) wholeShareQty(ctx context.Context, alert domain.Alert) int64 {
	cap := s.notionalCapUSD
	if alert.Notional > 0 {
		cap = alert.Notional
	}

	trade, err := s.prices.GetLatestTrade(ctx, alert.Symbol)
	if err != nil || trade.Price <= 0 {
		s.log.WarnContext(ctx, "price lookup failed, sizing one share",
			slog.String("symbol", alert.Symbol),
			slog.Any("error", err),
		)
		return 1
	}

	qty := int64(math.Floor(cap / trade.Price))
	if qty < 1 {
		qty = 1
	}
	return qty
}
