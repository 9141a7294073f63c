package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// stubEngine returns a canned decision and records the alert it was given.
type stubEngine struct {
	decision domain.Decision
	got      *domain.Alert
	calls    int
}

func (s *stubEngine) Handle(_ context.Context, alert domain.Alert) domain.Decision {
	s.calls++
	s.got = &alert
	dec := s.decision
	if dec.Symbol == "" {
		dec.Symbol = alert.Symbol
	}
	return dec
}

func postWebhook(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestWebhookSecretMismatch(t *testing.T) {
	eng := &stubEngine{}
	h := NewWebhookHandler(eng, "topsecret", testLogger())

	rec := postWebhook(h, `{"alert":"BUY","symbol":"AAPL","secret":"wrong"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, eng.calls, "engine must not run on a secret mismatch")
}

func TestWebhookMissingSecret(t *testing.T) {
	eng := &stubEngine{}
	h := NewWebhookHandler(eng, "topsecret", testLogger())

	rec := postWebhook(h, `{"alert":"BUY","symbol":"AAPL"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, eng.calls)
}

func TestWebhookSecretDisabled(t *testing.T) {
	eng := &stubEngine{decision: domain.Decision{Outcome: domain.OutcomeNoop}}
	h := NewWebhookHandler(eng, "", testLogger())

	rec := postWebhook(h, `{"alert":"BUY","symbol":"AAPL"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, eng.calls)
}

func TestWebhookMalformedJSON(t *testing.T) {
	eng := &stubEngine{}
	h := NewWebhookHandler(eng, "", testLogger())

	rec := postWebhook(h, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, eng.calls)
}

func TestWebhookMissingSymbol(t *testing.T) {
	eng := &stubEngine{}
	h := NewWebhookHandler(eng, "", testLogger())

	rec := postWebhook(h, `{"alert":"BUY"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, eng.calls)
}

func TestWebhookNormalizesAlert(t *testing.T) {
	eng := &stubEngine{decision: domain.Decision{Outcome: domain.OutcomeOpenedLong}}
	h := NewWebhookHandler(eng, "s3cr3t", testLogger())

	rec := postWebhook(h, `{"alert":"buy","symbol":" aapl ","qty":3,"secret":"s3cr3t"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, eng.got)
	assert.Equal(t, domain.SignalBuy, eng.got.Action)
	assert.Equal(t, "AAPL", eng.got.Symbol)
	assert.Equal(t, 3.0, eng.got.Qty)
}

func TestWebhookStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		decision domain.Decision
		want     int
	}{
		{"noop", domain.Decision{Outcome: domain.OutcomeNoop}, http.StatusOK},
		{"closed", domain.Decision{Outcome: domain.OutcomeClosed}, http.StatusOK},
		{"opened long", domain.Decision{Outcome: domain.OutcomeOpenedLong}, http.StatusOK},
		{"shorts disabled", domain.Decision{Outcome: domain.OutcomeShortsDisabled}, http.StatusOK},
		{
			"flatten and wait",
			domain.Decision{Outcome: domain.OutcomeFlattenAndWait, Next: domain.SignalBuy},
			http.StatusAccepted,
		},
		{
			"rejected",
			domain.Decision{Outcome: domain.OutcomeRejected, Err: errors.New("unrecognized action")},
			http.StatusBadRequest,
		},
		{
			"order failed, brokerage rejection",
			domain.Decision{
				Outcome: domain.OutcomeOrderFailed,
				Err:     &domain.OrderError{StatusCode: 403, Message: "insufficient buying power"},
			},
			http.StatusBadRequest,
		},
		{
			"order failed, transport fault",
			domain.Decision{
				Outcome: domain.OutcomeOrderFailed,
				Err:     &domain.OrderError{StatusCode: 0, Err: errors.New("dial tcp: timeout")},
			},
			http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &stubEngine{decision: tt.decision}
			h := NewWebhookHandler(eng, "", testLogger())

			rec := postWebhook(h, `{"alert":"BUY","symbol":"AAPL"}`)
			assert.Equal(t, tt.want, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.decision.Outcome), resp["status"])
			assert.Equal(t, "AAPL", resp["symbol"])
		})
	}
}

func TestWebhookResponseCarriesNext(t *testing.T) {
	eng := &stubEngine{decision: domain.Decision{
		Outcome: domain.OutcomeFlattenAndWait,
		Next:    domain.SignalSell,
	}}
	h := NewWebhookHandler(eng, "", testLogger())

	rec := postWebhook(h, `{"alert":"SELL","symbol":"TSLA"}`)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SELL", resp["next"])
}
