package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	streamWriteWait = 10 * time.Second

	streamPongWait   = 30 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10

	streamReconnectDelay    = 2 * time.Second
	streamMaxReconnectDelay = 60 * time.Second
)

// TradeUpdate is one order-lifecycle event from the trade_updates stream.
type TradeUpdate struct {
	Event          string // "new", "fill", "partial_fill", "canceled", "rejected"
	ClientOrderID  string
	BrokerOrderID  string
	Symbol         string
	FilledQty      float64
	FilledAvgPrice float64
	At             time.Time
}

// TradeUpdateHandler is called for every trade update received.
type TradeUpdateHandler func(TradeUpdate)

// StreamClient listens to the brokerage's trade_updates websocket so fills
// and cancels can be journalled without polling.
type StreamClient struct {
	wsURL     string
	keyID     string
	secretKey string

	mu     sync.RWMutex
	conn   *websocket.Conn
	closed bool

	// writeMu serializes connection writes; gorilla/websocket allows at
	// most one concurrent writer.
	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handlers  []TradeUpdateHandler

	done chan struct{}
}

// NewStreamClient creates a StreamClient for the given websocket endpoint,
// e.g. "wss://paper-api.alpaca.markets/stream".
func NewStreamClient(wsURL, keyID, secretKey string) *StreamClient {
	return &StreamClient{
		wsURL:     wsURL,
		keyID:     keyID,
		secretKey: secretKey,
		done:      make(chan struct{}),
	}
}

// OnTradeUpdate registers a handler called for every trade update.
func (s *StreamClient) OnTradeUpdate(handler TradeUpdateHandler) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Connect dials the stream, authenticates, and subscribes to trade_updates.
// Read and ping loops run in the background until Close.
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("alpaca/stream: client is closed")
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("alpaca/stream: connect: %w", err)
	}
	s.conn = conn

	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		return nil
	})

	if err := s.authenticate(); err != nil {
		conn.Close()
		s.conn = nil
		return err
	}

	go s.readLoop()
	go s.pingLoop()

	return nil
}

// Close shuts down the stream connection.
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)

	if s.conn != nil {
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		s.writeMu.Unlock()
		return s.conn.Close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Internal methods
// --------------------------------------------------------------------------

type streamCommand struct {
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type tradeUpdateMessage struct {
	Event     string  `json:"event"`
	Qty       numeric `json:"qty"`
	Price     numeric `json:"price"`
	Timestamp string  `json:"timestamp"`
	Order     struct {
		ID             string  `json:"id"`
		ClientOrderID  string  `json:"client_order_id"`
		Symbol         string  `json:"symbol"`
		FilledQty      numeric `json:"filled_qty"`
		FilledAvgPrice numeric `json:"filled_avg_price"`
	} `json:"order"`
}

// authenticate performs the auth handshake and the trade_updates listen
// request. Caller must hold s.mu.
func (s *StreamClient) authenticate() error {
	auth := streamCommand{
		Action: "authenticate",
		Data: map[string]any{
			"key_id":     s.keyID,
			"secret_key": s.secretKey,
		},
	}
	if err := s.writeJSON(auth); err != nil {
		return fmt.Errorf("alpaca/stream: authenticate: %w", err)
	}

	listen := streamCommand{
		Action: "listen",
		Data: map[string]any{
			"streams": []string{"trade_updates"},
		},
	}
	if err := s.writeJSON(listen); err != nil {
		return fmt.Errorf("alpaca/stream: listen: %w", err)
	}
	return nil
}

// writeJSON marshals and writes one message under the writer mutex.
func (s *StreamClient) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop reads messages and dispatches trade updates. On disconnect it
// attempts reconnection with backoff.
func (s *StreamClient) readLoop() {
	for {
		select {
		case <-s.done:
			return
		default:
		}

		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()

		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			s.reconnect()
			return
		}

		s.handleMessage(message)
	}
}

// pingLoop keeps the connection alive.
func (s *StreamClient) pingLoop() {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()

			if conn == nil {
				return
			}

			s.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// handleMessage parses a raw message and routes trade updates to handlers.
func (s *StreamClient) handleMessage(raw []byte) {
	var envelope streamEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return
	}
	if envelope.Stream != "trade_updates" {
		return
	}

	var msg tradeUpdateMessage
	if err := json.Unmarshal(envelope.Data, &msg); err != nil {
		return
	}

	at, _ := time.Parse(time.RFC3339Nano, msg.Timestamp)
	update := TradeUpdate{
		Event:          msg.Event,
		ClientOrderID:  msg.Order.ClientOrderID,
		BrokerOrderID:  msg.Order.ID,
		Symbol:         msg.Order.Symbol,
		FilledQty:      float64(msg.Order.FilledQty),
		FilledAvgPrice: float64(msg.Order.FilledAvgPrice),
		At:             at,
	}

	s.handlerMu.RLock()
	handlers := s.handlers
	s.handlerMu.RUnlock()

	for _, h := range handlers {
		h(update)
	}
}

// reconnect re-establishes the connection with exponential backoff.
func (s *StreamClient) reconnect() {
	delay := streamReconnectDelay

	for {
		select {
		case <-s.done:
			return
		default:
		}

		time.Sleep(delay)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := s.Connect(ctx)
		cancel()

		if err == nil {
			return
		}

		delay *= 2
		if delay > streamMaxReconnectDelay {
			delay = streamMaxReconnectDelay
		}
	}
}
