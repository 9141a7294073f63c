// Package alpaca is the REST and streaming client for the Alpaca brokerage
// API. It implements domain.Broker.
package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// ClientConfig holds endpoints and credentials for the REST client.
type ClientConfig struct {
	// BaseURL is the trading API root, e.g. "https://paper-api.alpaca.markets".
	BaseURL string
	// DataBaseURL is the market data API root, e.g. "https://data.alpaca.markets".
	DataBaseURL string
	KeyID       string
	SecretKey   string
	// RequestsPerSecond caps outbound calls across all endpoints; 0 disables
	// throttling.
	RequestsPerSecond float64
}

// Client is the REST client for the Alpaca trading and market data APIs.
type Client struct {
	baseURL    string
	dataURL    string
	keyID      string
	secretKey  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Alpaca REST client.
func NewClient(cfg ClientConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		dataURL:   cfg.DataBaseURL,
		keyID:     cfg.KeyID,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: limiter,
	}
}

// GetPosition returns the live position for symbol. A flat symbol returns
// domain.ErrNotFound.
func (c *Client) GetPosition(ctx context.Context, symbol string) (domain.Position, error) {
	path := fmt.Sprintf("/v2/positions/%s", url.PathEscape(symbol))

	body, err := c.doRequest(ctx, http.MethodGet, c.baseURL, path, nil)
	if err != nil {
		return domain.Position{}, fmt.Errorf("alpaca: get position %s: %w", symbol, err)
	}

	var resp positionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Position{}, fmt.Errorf("alpaca: decode position: %w", err)
	}

	return domain.Position{
		Symbol: resp.Symbol,
		Qty:    float64(resp.Qty),
		Side:   resp.Side,
	}, nil
}

// ListPositions returns all open positions on the account.
func (c *Client) ListPositions(ctx context.Context) ([]domain.Position, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.baseURL, "/v2/positions", nil)
	if err != nil {
		return nil, fmt.Errorf("alpaca: list positions: %w", err)
	}

	var resp []positionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("alpaca: decode positions: %w", err)
	}

	positions := make([]domain.Position, 0, len(resp))
	for _, p := range resp {
		positions = append(positions, domain.Position{
			Symbol: p.Symbol,
			Qty:    float64(p.Qty),
			Side:   p.Side,
		})
	}
	return positions, nil
}

// GetAsset returns asset metadata for the tradability check.
func (c *Client) GetAsset(ctx context.Context, symbol string) (domain.Asset, error) {
	path := fmt.Sprintf("/v2/assets/%s", url.PathEscape(symbol))

	body, err := c.doRequest(ctx, http.MethodGet, c.baseURL, path, nil)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("alpaca: get asset %s: %w", symbol, err)
	}

	var resp assetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Asset{}, fmt.Errorf("alpaca: decode asset: %w", err)
	}

	return domain.Asset{
		Symbol:   resp.Symbol,
		Tradable: resp.Tradable,
		Class:    resp.Class,
	}, nil
}

// GetLatestTrade returns the most recent trade print for symbol from the
// market data API.
func (c *Client) GetLatestTrade(ctx context.Context, symbol string) (domain.Trade, error) {
	path := fmt.Sprintf("/v2/stocks/%s/trades/latest", url.PathEscape(symbol))

	body, err := c.doRequest(ctx, http.MethodGet, c.dataURL, path, nil)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("alpaca: latest trade %s: %w", symbol, err)
	}

	var resp latestTradeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Trade{}, fmt.Errorf("alpaca: decode latest trade: %w", err)
	}

	return domain.Trade{
		Symbol:    symbol,
		Price:     resp.Trade.Price,
		Timestamp: resp.Trade.Timestamp,
	}, nil
}

// SubmitOrder places a market order described by spec. Failures of any kind
// (rejection, transport, server fault) are returned as *domain.OrderError.
func (c *Client) SubmitOrder(ctx context.Context, spec domain.OrderSpec, clientOrderID string) (string, error) {
	req := orderRequest{
		Symbol:        spec.Symbol,
		Side:          string(spec.Side),
		Type:          "market",
		TimeInForce:   string(spec.TimeInForce),
		ClientOrderID: clientOrderID,
	}
	if spec.Notional > 0 {
		req.Notional = strconv.FormatFloat(spec.Notional, 'f', 2, 64)
	} else {
		req.Qty = strconv.FormatInt(spec.Qty, 10)
	}

	body, err := c.doRequest(ctx, http.MethodPost, c.baseURL, "/v2/orders", req)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			return "", &domain.OrderError{
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
				Err:        apiErr,
			}
		}
		return "", &domain.OrderError{Err: err}
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &domain.OrderError{Err: fmt.Errorf("decode order response: %w", err)}
	}

	return resp.ID, nil
}

// ClosePosition liquidates the entire position in symbol. Closing a symbol
// with no position returns domain.ErrNotFound.
func (c *Client) ClosePosition(ctx context.Context, symbol string) error {
	path := fmt.Sprintf("/v2/positions/%s", url.PathEscape(symbol))

	if _, err := c.doRequest(ctx, http.MethodDelete, c.baseURL, path, nil); err != nil {
		return fmt.Errorf("alpaca: close position %s: %w", symbol, err)
	}
	return nil
}

// GetAccount returns the account snapshot.
func (c *Client) GetAccount(ctx context.Context) (domain.Account, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.baseURL, "/v2/account", nil)
	if err != nil {
		return domain.Account{}, fmt.Errorf("alpaca: get account: %w", err)
	}

	var resp accountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Account{}, fmt.Errorf("alpaca: decode account: %w", err)
	}

	return domain.Account{
		ID:            resp.ID,
		AccountNumber: resp.AccountNumber,
		Equity:        float64(resp.Equity),
		BuyingPower:   float64(resp.BuyingPower),
		Cash:          float64(resp.Cash),
		PatternDay:    resp.PatternDayTrader,
		TradingBlock:  resp.TradingBlocked,
	}, nil
}

// Compile-time interface check.
var _ domain.Broker = (*Client)(nil)

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// apiError carries a non-2xx response from the API.
type apiError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (code %d)", e.StatusCode, e.Message, e.Code)
}

// doRequest builds, authenticates, sends, and reads an HTTP request against
// the given API root, honouring the outbound rate limiter.
func (c *Client) doRequest(ctx context.Context, method, base, path string, reqBody any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("APCA-API-KEY-ID", c.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// checkStatus maps non-2xx HTTP status codes to errors. 404 maps to
// domain.ErrNotFound so callers can distinguish a flat position or unknown
// symbol from a real fault.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	if statusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}

	var apiErr apiErrorResponse
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Message
	if msg == "" {
		msg = http.StatusText(statusCode)
	}

	return &apiError{
		StatusCode: statusCode,
		Code:       apiErr.Code,
		Message:    msg,
	}
}
