package alpaca

import (
	"encoding/json"
	"strconv"
	"time"
)

// numeric accepts the API's habit of encoding quantities and dollar amounts
// as JSON strings while tolerating plain numbers.
type numeric float64

func (n *numeric) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = numeric(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = numeric(f)
	return nil
}

// positionResponse is the wire format of GET /v2/positions/{symbol}.
type positionResponse struct {
	Symbol string  `json:"symbol"`
	Qty    numeric `json:"qty"`
	Side   string  `json:"side"`
}

// assetResponse is the wire format of GET /v2/assets/{symbol}.
type assetResponse struct {
	Symbol   string `json:"symbol"`
	Class    string `json:"class"`
	Tradable bool   `json:"tradable"`
}

// latestTradeResponse is the wire format of GET /v2/stocks/{symbol}/trades/latest.
type latestTradeResponse struct {
	Symbol string `json:"symbol"`
	Trade  struct {
		Price     float64   `json:"p"`
		Timestamp time.Time `json:"t"`
	} `json:"trade"`
}

// orderRequest is the wire format of POST /v2/orders. Exactly one of Qty or
// Notional is set.
type orderRequest struct {
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	Qty           string `json:"qty,omitempty"`
	Notional      string `json:"notional,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

// orderResponse is the subset of the order wire format this client reads.
type orderResponse struct {
	ID            string  `json:"id"`
	ClientOrderID string  `json:"client_order_id"`
	Symbol        string  `json:"symbol"`
	Status        string  `json:"status"`
	FilledQty     numeric `json:"filled_qty"`
	FilledAvgPx   numeric `json:"filled_avg_price"`
}

// accountResponse is the wire format of GET /v2/account.
type accountResponse struct {
	ID                string  `json:"id"`
	AccountNumber     string  `json:"account_number"`
	Equity            numeric `json:"equity"`
	BuyingPower       numeric `json:"buying_power"`
	Cash              numeric `json:"cash"`
	PatternDayTrader  bool    `json:"pattern_day_trader"`
	TradingBlocked    bool    `json:"trading_blocked"`
	AccountBlocked    bool    `json:"account_blocked"`
	ShortingEnabled   bool    `json:"shorting_enabled"`
	DaytradeCount     int     `json:"daytrade_count"`
	TransfersBlocked  bool    `json:"transfers_blocked"`
}

// apiErrorResponse is the JSON error body the API attaches to non-2xx
// responses.
type apiErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
