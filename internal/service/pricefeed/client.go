package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	drepo "SignalDesk/internal/domain/repository"
	applogger "SignalDesk/pkg/logger"
)

// Client implements a PriceStream backed by a Finnhub-style trade WebSocket.
// It keeps only the last observed price per symbol; the lifecycle classifier
// needs a current quote, not a tape.
type Client struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	l              *applogger.Logger

	conn      *websocket.Conn
	connected bool

	mu     sync.RWMutex
	prices map[string]float64
}

func New(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, l *applogger.Logger) drepo.PriceStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              l,
		prices:         make(map[string]float64),
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("pricefeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	if c.l != nil {
		c.l.Info("pricefeed connected")
	}
	return nil
}

// Subscribe subscribes to the configured symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("pricefeed not connected")
	}
	for _, s := range c.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": s}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		if c.l != nil {
			c.l.Info("pricefeed subscribed", applogger.String("symbol", s))
		}
	}
	return nil
}

type tick struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type frame struct {
	Type string `json:"type"`
	Data []tick `json:"data"`
}

// Run consumes trade frames until the context ends or the connection breaks,
// reconnecting with the configured delay. It blocks.
func (c *Client) Run(ctx context.Context) error {
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

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if c.conn == nil {
			if err := c.Reconnect(ctx); err != nil {
				if c.l != nil {
					c.l.Warn("pricefeed reconnect failed", applogger.Error(err))
				}
				continue
			}
		}

		_, b, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.l != nil {
				c.l.Warn("pricefeed read failed", applogger.Error(err))
			}
			c.connected = false
			c.conn = nil
			continue
		}

		var m frame
		if err := json.Unmarshal(b, &m); err != nil {
			// non-trade frames (ping acks, status) are ignored
			continue
		}
		if m.Type != "trade" {
			continue
		}
		c.mu.Lock()
		for _, d := range m.Data {
			c.prices[d.S] = d.P
		}
		c.mu.Unlock()
	}
}

// LastPrice returns the most recent quote seen for symbol.
func (c *Client) LastPrice(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[symbol]
	return p, ok
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.reconnectDelay):
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
