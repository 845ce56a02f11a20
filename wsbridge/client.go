// Package wsbridge streams batch progress to an external dashboard over a
// WebSocket connection. The connection is write-mostly: incoming frames are
// read only to service pongs and detect a closed peer.
package wsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

var (
	ErrClosed     = errors.New("wsbridge: client closed")
	ErrBufferFull = errors.New("wsbridge: send buffer full")
)

// Client owns one outbound WebSocket connection.
type Client struct {
	ws     *websocket.Conn
	logger hclog.Logger
	send   chan []byte

	mu      sync.Mutex
	closed  bool
	dropped int

	writerDone chan struct{}
	readerDone chan struct{}
}

// Dial connects to url and starts the read and write pumps.
func Dial(ctx context.Context, url string, logger hclog.Logger) (*Client, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		ws:         ws,
		logger:     logger.Named("wsbridge"),
		send:       make(chan []byte, sendBuffer),
		writerDone: make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	go c.readPump()
	go c.writePump()

	c.logger.Debug("connected", "url", url)
	return c, nil
}

// Send queues env for writing. It never blocks: when the buffer is full
// the frame is dropped and ErrBufferFull returned.
func (c *Client) Send(env Envelope) error {
	if env.Timestamp.IsZero() {
		env.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", env.Type, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		c.dropped++
		return ErrBufferFull
	}
}

// Dropped returns how many frames were discarded because the buffer was full.
func (c *Client) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Close flushes queued frames, sends a close frame and closes the connection.
// Flushing is bounded by the write deadline.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	select {
	case <-c.writerDone:
	case <-time.After(writeWait):
		c.logger.Warn("timed out flushing progress frames")
	}
	if c.dropped > 0 {
		c.logger.Warn("dropped progress frames", "count", c.dropped)
	}
	return c.ws.Close()
}

func (c *Client) readPump() {
	defer close(c.readerDone)

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read error", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.writerDone)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("write failed, progress streaming stopped", "error", err)
				c.drain()
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.drain()
				return
			}
		case <-c.readerDone:
			c.drain()
			return
		}
	}
}

// drain discards frames until Close so senders keep seeing a live buffer.
func (c *Client) drain() {
	go func() {
		for range c.send {
		}
	}()
}
