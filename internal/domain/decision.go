package domain

import (
	"net/http"
	"time"
)

// Outcome tags the result of one reconciliation pass.
type Outcome string

const (
	OutcomeNoop           Outcome = "noop"
	OutcomeClosed         Outcome = "closed"
	OutcomeFlattenAndWait Outcome = "flatten_and_wait"
	OutcomeOpenedLong     Outcome = "opened_long"
	OutcomeOpenedShort    Outcome = "opened_short"
	OutcomeShortsDisabled Outcome = "shorts_disabled"
	OutcomeRejected       Outcome = "rejected"
	OutcomeOrderFailed    Outcome = "order_failed"
)

// HTTPStatus returns the response status code the webhook caller should see
// for this outcome.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeFlattenAndWait:
		return http.StatusAccepted
	case OutcomeRejected:
		return http.StatusBadRequest
	case OutcomeOrderFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// Decision is the engine's output for one alert: the outcome tag, the order
// that was submitted (if any), and the signal the engine expects to act on
// next when the outcome was a flatten-and-wait split.
type Decision struct {
	Symbol  string
	Outcome Outcome
	Next    Signal     // set for flatten_and_wait
	Order   *OrderSpec // set for opened_long / opened_short
	OrderID string     // journal/client order ID when an order was submitted
	Err     error      // set for rejected / order_failed
}

// DecisionRecord is the journal row written for every engine decision.
type DecisionRecord struct {
	ID        string
	Symbol    string
	Action    Signal
	Prev      AppliedSignal
	Position  int64
	Outcome   Outcome
	OrderID   string
	Detail    string
	CreatedAt time.Time
}
