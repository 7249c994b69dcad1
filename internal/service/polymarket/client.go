package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PolyWatch/internal/domain/models"
	drepo "PolyWatch/internal/domain/repository"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client implements a TradeStream backed by the venue's trade WebSocket feed.
type Client struct {
	websocketURL   string
	markets        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new venue trade stream.
func New(websocketURL string, markets []string, reconnectDelay, pingInterval time.Duration) drepo.TradeStream {
	return &Client{
		websocketURL:   websocketURL,
		markets:        markets,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("polymarket connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Info().Str("url", c.websocketURL).Msg("polymarket: connected")
	return nil
}

// Subscribe subscribes to the configured market trade channels.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("polymarket not connected")
	}
	for _, m := range c.markets {
		msg := map[string]string{"type": "subscribe", "channel": "trades", "market": m}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", m, err)
		}
		log.Info().Str("market", m).Msg("polymarket: subscribed")
	}
	return nil
}

type wsTrade struct {
	ID      string  `json:"id"`
	Account string  `json:"account"`
	Market  string  `json:"market"`
	Outcome string  `json:"outcome"`
	Size    float64 `json:"size"`
	Price   float64 `json:"price"`
	T       int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Read streams TradeRecord events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.TradeRecord, <-chan error) {
	trades := make(chan *models.TradeRecord, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(trades)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("polymarket conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("polymarket read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-trade frames
					continue
				}
				if m.Type != "trade" {
					continue
				}
				for _, d := range m.Data {
					rec := &models.TradeRecord{
						TradeID:   d.ID,
						AccountID: d.Account,
						MarketID:  d.Market,
						Timestamp: time.UnixMilli(d.T),
						Outcome:   d.Outcome,
						Size:      d.Size,
						Price:     d.Price,
					}
					select {
					case trades <- rec:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return trades, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
