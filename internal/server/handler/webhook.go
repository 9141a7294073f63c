package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// maxWebhookBody caps the webhook request body size.
const maxWebhookBody = 1 << 16

// AlertEngine is the slice of the reconciliation engine the webhook needs.
type AlertEngine interface {
	Handle(ctx context.Context, alert domain.Alert) domain.Decision
}

// webhookRequest is the inbound alert payload from the signal source.
type webhookRequest struct {
	Alert    string  `json:"alert"`
	Symbol   string  `json:"symbol"`
	Qty      float64 `json:"qty,omitempty"`
	Notional float64 `json:"notional,omitempty"`
	Secret   string  `json:"secret,omitempty"`
}

// webhookResponse mirrors the engine decision back to the caller.
type webhookResponse struct {
	Status  string `json:"status"`
	Symbol  string `json:"symbol"`
	Next    string `json:"next,omitempty"`
	OrderID string `json:"order_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WebhookHandler receives trading alerts and runs them through the engine.
type WebhookHandler struct {
	engine AlertEngine
	secret string
	logger *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler. If secret is empty the shared
// secret check is disabled.
func NewWebhookHandler(engine AlertEngine, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		engine: engine,
		secret: secret,
		logger: logHandler(logger, "webhook"),
	}
}

// Receive handles one inbound alert.
// POST /webhook
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON payload")
		return
	}

	// Shared-secret check runs before any engine logic.
	if h.secret != "" {
		if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.secret)) != 1 {
			h.logger.WarnContext(r.Context(), "webhook secret mismatch",
				slog.String("remote_addr", r.RemoteAddr),
			)
			writeError(w, http.StatusForbidden, "unauthorized")
			return
		}
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	alert := domain.Alert{
		Action:   domain.ParseSignal(req.Alert),
		Symbol:   symbol,
		Qty:      req.Qty,
		Notional: req.Notional,
	}

	dec := h.engine.Handle(r.Context(), alert)

	resp := webhookResponse{
		Status:  string(dec.Outcome),
		Symbol:  dec.Symbol,
		Next:    string(dec.Next),
		OrderID: dec.OrderID,
	}
	if dec.Err != nil {
		resp.Error = dec.Err.Error()
	}

	writeJSON(w, statusFor(dec), resp)
}

// statusFor maps a decision to an HTTP status code. Order-submission
// failures the brokerage reported as client errors (unknown symbol, bad
// parameters) surface as 400; transport and server-side failures as 500.
func statusFor(dec domain.Decision) int {
	if dec.Outcome == domain.OutcomeOrderFailed {
		var oerr *domain.OrderError
		if errors.As(dec.Err, &oerr) && oerr.Rejection() {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
	return dec.Outcome.HTTPStatus()
}
