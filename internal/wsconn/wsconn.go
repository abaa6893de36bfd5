// Package wsconn provides a production-grade WebSocket client with reconnection.
package wsconn

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apperror"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
	OnReconnect    func() // invoked after each successful (re)connect
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
	}
}

// Client is a WebSocket client that maintains the connection across drops.
type Client struct {
	config  Config
	state   State
	stateMu sync.RWMutex

	conn   *websocket.Conn
	connMu sync.RWMutex

	messages chan []byte
	done     chan struct{}
	closed   sync.Once
}

// New creates a new WebSocket client.
func New(config Config) *Client {
	return &Client{
		config:   config,
		state:    StateDisconnected,
		messages: make(chan []byte, 100),
		done:     make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the read loop.
// The read loop reconnects with exponential backoff until Close is called,
// the context is cancelled, or MaxReconnects is exhausted.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	if err := c.dial(ctx); err != nil {
		c.setState(StateDisconnected)
		return apperror.Wrap(err, apperror.CodeFeedConnectionFailed, c.config.URL)
	}

	c.setState(StateConnected)

	go c.readLoop(ctx)
	if c.config.PingInterval > 0 {
		go c.pingLoop(ctx)
	}
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return err
	}
	conn.SetReadLimit(1 << 20)

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// readLoop pumps messages into the channel and reconnects on failure.
func (c *Client) readLoop(ctx context.Context) {
	reconnects := 0

	for {
		conn := c.current()
		if conn == nil {
			return
		}

		_, data, err := conn.Read(ctx)
		if err == nil {
			select {
			case c.messages <- data:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
			continue
		}

		// Connection lost.
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		if c.config.MaxReconnects > 0 && reconnects >= c.config.MaxReconnects {
			c.setState(StateDisconnected)
			return
		}

		c.setState(StateReconnecting)
		backoff := c.config.InitialBackoff
		for {
			select {
			case <-time.After(backoff):
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}

			if err := c.dial(ctx); err == nil {
				break
			}
			backoff *= 2
			if backoff > c.config.MaxBackoff {
				backoff = c.config.MaxBackoff
			}
		}

		reconnects++
		c.setState(StateConnected)
		if c.config.OnReconnect != nil {
			c.config.OnReconnect()
		}
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if conn := c.current(); conn != nil {
				pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				_ = conn.Ping(pingCtx)
				cancel()
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Send sends a text message through the WebSocket.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	conn := c.current()
	if conn == nil {
		return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.config.URL))
	}
	return conn.Write(ctx, websocket.MessageText, msg)
}

// Messages returns the channel for receiving messages.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Close gracefully closes the WebSocket connection.
func (c *Client) Close() error {
	c.closed.Do(func() {
		close(c.done)
	})
	if conn := c.current(); conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "client closing")
	}
	c.setState(StateDisconnected)
	return nil
}

func (c *Client) current() *websocket.Conn {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn
}

func (c *Client) setState(state State) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}
