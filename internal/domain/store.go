package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// SignalStore is the per-symbol record of the last applied signal. Entries
// are created lazily on first sight of a symbol (default AppliedFlat) and
// never deleted; the symbol universe is small. Implementations must be safe
// for concurrent use.
type SignalStore interface {
	Get(ctx context.Context, symbol string) (AppliedSignal, error)
	Set(ctx context.Context, symbol string, sig AppliedSignal) error
}

// DecisionStore persists the append-only decision journal.
type DecisionStore interface {
	Insert(ctx context.Context, rec DecisionRecord) error
	ListRecent(ctx context.Context, opts ListOpts) ([]DecisionRecord, error)
	ListBySymbol(ctx context.Context, symbol string, opts ListOpts) ([]DecisionRecord, error)
	ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]DecisionRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderStore persists submitted orders and their fill state.
type OrderStore interface {
	Create(ctx context.Context, rec OrderRecord) error
	UpdateFill(ctx context.Context, clientOrderID string, status OrderStatus, filledQty, filledAvgPx float64, filledAt *time.Time) error
	GetByClientID(ctx context.Context, clientOrderID string) (OrderRecord, error)
	ListRecent(ctx context.Context, opts ListOpts) ([]OrderRecord, error)
}

// BlobWriter uploads an object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
}
