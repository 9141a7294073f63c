package domain

import (
	"context"
	"time"
)

// Position is the live signed holding in one symbol as reported by the
// brokerage: positive long, negative short.
type Position struct {
	Symbol string
	Qty    float64
	Side   string // "long" or "short"
}

// Asset is the brokerage's view of a tradable instrument.
type Asset struct {
	Symbol   string
	Tradable bool
	Class    string
}

// Trade is the latest trade print for a symbol.
type Trade struct {
	Symbol    string
	Price     float64
	Timestamp time.Time
}

// Account is a snapshot of the brokerage account, surfaced on the status
// endpoint.
type Account struct {
	ID            string
	Equity        float64
	BuyingPower   float64
	Cash          float64
	PatternDay    bool
	TradingBlock  bool
	AccountNumber string
}

// Broker abstracts the brokerage operations the engine needs. The live
// implementation is the Alpaca REST client; tests inject fakes.
type Broker interface {
	// GetPosition returns the current position for symbol, or ErrNotFound
	// when the symbol is flat.
	GetPosition(ctx context.Context, symbol string) (Position, error)

	// ListPositions returns all open positions on the account.
	ListPositions(ctx context.Context) ([]Position, error)

	// GetAsset returns asset metadata, used for the pre-trade tradability
	// check. Unknown symbols return ErrNotFound.
	GetAsset(ctx context.Context, symbol string) (Asset, error)

	// GetLatestTrade returns the most recent trade print for symbol.
	GetLatestTrade(ctx context.Context, symbol string) (Trade, error)

	// SubmitOrder places the order described by spec with the given
	// client order ID. Failures are returned as *OrderError.
	SubmitOrder(ctx context.Context, spec OrderSpec, clientOrderID string) (string, error)

	// ClosePosition flattens the symbol's position entirely.
	ClosePosition(ctx context.Context, symbol string) error

	// GetAccount returns the account snapshot.
	GetAccount(ctx context.Context) (Account, error)
}
