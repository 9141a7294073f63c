package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotTradable  = errors.New("asset not tradable")
	ErrWSDisconnect = errors.New("websocket disconnected")
)

// OrderError wraps a brokerage order-submission failure. It carries the HTTP
// status the brokerage returned (0 for transport failures) and the raw
// message so the webhook caller sees what the brokerage said. All submission
// failures collapse into this one kind; the caller owns retry policy.
type OrderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *OrderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("order failed: %s", e.Message)
	}
	return fmt.Sprintf("order failed: %v", e.Err)
}

func (e *OrderError) Unwrap() error { return e.Err }

// Rejection reports whether the failure was a brokerage rejection (4xx) as
// opposed to a transport or server-side fault. Rejections map to a 400
// response for the webhook caller, everything else to 500.
func (e *OrderError) Rejection() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
