package alpaca

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		BaseURL:     srv.URL,
		DataBaseURL: srv.URL,
		KeyID:       "test-key",
		SecretKey:   "test-secret",
	})
}

func TestGetPosition(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/positions/AAPL", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "test-secret", r.Header.Get("APCA-API-SECRET-KEY"))
		w.Write([]byte(`{"symbol":"AAPL","qty":"-3","side":"short"}`))
	})

	pos, err := c.GetPosition(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", pos.Symbol)
	assert.Equal(t, -3.0, pos.Qty)
	assert.Equal(t, "short", pos.Side)
}

func TestGetPositionFlatIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":40410000,"message":"position does not exist"}`))
	})

	_, err := c.GetPosition(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPositions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/positions", r.URL.Path)
		w.Write([]byte(`[{"symbol":"AAPL","qty":"2","side":"long"},{"symbol":"TSLA","qty":"-1","side":"short"}]`))
	})

	positions, err := c.ListPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, 2.0, positions[0].Qty)
	assert.Equal(t, -1.0, positions[1].Qty)
}

func TestGetAsset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/assets/MSFT", r.URL.Path)
		w.Write([]byte(`{"symbol":"MSFT","class":"us_equity","tradable":true}`))
	})

	asset, err := c.GetAsset(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.True(t, asset.Tradable)
	assert.Equal(t, "us_equity", asset.Class)
}

func TestGetLatestTrade(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/stocks/XYZ/trades/latest", r.URL.Path)
		w.Write([]byte(`{"symbol":"XYZ","trade":{"p":37.5,"t":"2025-06-02T14:30:00Z"}}`))
	})

	trade, err := c.GetLatestTrade(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Equal(t, 37.5, trade.Price)
}

func TestSubmitOrderNotional(t *testing.T) {
	var got orderRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"ord-1","client_order_id":"cid-1","symbol":"AAPL","status":"accepted"}`))
	})

	spec := domain.OrderSpec{
		Symbol:      "AAPL",
		Side:        domain.OrderSideBuy,
		Notional:    1000,
		TimeInForce: domain.TimeInForceDay,
	}
	id, err := c.SubmitOrder(context.Background(), spec, "cid-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", id)

	assert.Equal(t, "buy", got.Side)
	assert.Equal(t, "market", got.Type)
	assert.Equal(t, "day", got.TimeInForce)
	assert.Equal(t, "1000.00", got.Notional)
	assert.Empty(t, got.Qty)
	assert.Equal(t, "cid-1", got.ClientOrderID)
}

func TestSubmitOrderWholeShares(t *testing.T) {
	var got orderRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"ord-2","symbol":"XYZ","status":"accepted"}`))
	})

	spec := domain.OrderSpec{
		Symbol:      "XYZ",
		Side:        domain.OrderSideSell,
		Qty:         2,
		TimeInForce: domain.TimeInForceGTC,
	}
	_, err := c.SubmitOrder(context.Background(), spec, "cid-2")
	require.NoError(t, err)

	assert.Equal(t, "2", got.Qty)
	assert.Empty(t, got.Notional)
	assert.Equal(t, "gtc", got.TimeInForce)
}

func TestSubmitOrderRejectionWrapsOrderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":40310000,"message":"insufficient buying power"}`))
	})

	_, err := c.SubmitOrder(context.Background(), domain.OrderSpec{
		Symbol: "AAPL", Side: domain.OrderSideBuy, Notional: 1e9, TimeInForce: domain.TimeInForceDay,
	}, "cid-3")

	var oerr *domain.OrderError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, http.StatusForbidden, oerr.StatusCode)
	assert.True(t, oerr.Rejection())
	assert.Contains(t, oerr.Message, "insufficient buying power")
}

func TestSubmitOrderServerFaultIsNotRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.SubmitOrder(context.Background(), domain.OrderSpec{
		Symbol: "AAPL", Side: domain.OrderSideBuy, Notional: 100, TimeInForce: domain.TimeInForceDay,
	}, "cid-4")

	var oerr *domain.OrderError
	require.ErrorAs(t, err, &oerr)
	assert.False(t, oerr.Rejection())
}

func TestClosePosition(t *testing.T) {
	var method, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.Write([]byte(`{"symbol":"AAPL","qty":"0"}`))
	})

	require.NoError(t, c.ClosePosition(context.Background(), "AAPL"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/v2/positions/AAPL", path)
}

func TestGetAccount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account", r.URL.Path)
		w.Write([]byte(`{"id":"acc-1","account_number":"PA123","equity":"25000.50","buying_power":"50000","cash":"10000","pattern_day_trader":false,"trading_blocked":false}`))
	})

	acct, err := c.GetAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-1", acct.ID)
	assert.Equal(t, 25000.50, acct.Equity)
	assert.Equal(t, 50000.0, acct.BuyingPower)
	assert.False(t, acct.TradingBlock)
}

func TestNumericAcceptsStringsAndNumbers(t *testing.T) {
	var v struct {
		A numeric `json:"a"`
		B numeric `json:"b"`
		C numeric `json:"c"`
		D numeric `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.5","b":7,"c":null,"d":""}`), &v))
	assert.Equal(t, numeric(12.5), v.A)
	assert.Equal(t, numeric(7), v.B)
	assert.Equal(t, numeric(0), v.C)
	assert.Equal(t, numeric(0), v.D)
}
