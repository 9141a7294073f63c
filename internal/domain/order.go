package domain

import "time"

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// TimeInForce is the order's time-in-force policy. The brokerage only
// accepts fractional (notional) orders with DAY; whole-share orders may use
// GTC.
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
)

// OrderSpec describes one order the engine decided to submit. Exactly one of
// Notional or Qty is set: notional sizing and whole-share sizing are never
// mixed within a single order.
type OrderSpec struct {
	Symbol      string
	Side        OrderSide
	Notional    float64 // USD amount; brokerage computes fractional shares
	Qty         int64   // whole-share quantity
	TimeInForce TimeInForce
}

// OrderStatus tracks the lifecycle of a submitted order as reported by the
// brokerage trade-updates stream.
type OrderStatus string

const (
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
)

// OrderRecord is the journal row for a submitted order.
type OrderRecord struct {
	ID            string // journal UUID, also used as client_order_id
	BrokerOrderID string
	Symbol        string
	Side          OrderSide
	Notional      float64
	Qty           int64
	TimeInForce   TimeInForce
	Status        OrderStatus
	FilledQty     float64
	FilledAvgPx   float64
	CreatedAt     time.Time
	FilledAt      *time.Time
}
