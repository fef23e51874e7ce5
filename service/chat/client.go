package chat

import (
	"sync"
	"time"

	"SnapTalk/logger"

	"github.com/gorilla/websocket"
)

const writeDeadline = 5 * time.Second

// Client is a live connection handle: the websocket plus the identity bound
// to it at handshake time, and a bounded outbound queue drained by a single
// writer goroutine.
type Client struct {
	ConnID   string
	Identity Identity
	WS       *websocket.Conn
	Send     chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(connID string, ident Identity, ws *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 64
	}
	return &Client{
		ConnID:   connID,
		Identity: ident,
		WS:       ws,
		Send:     make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
	}
}

// Open reports whether the handle has not been closed yet.
func (c *Client) Open() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// TrySend queues a frame without blocking. Returns false when the handle is
// closed or the consumer is too slow to keep up (the frame is dropped, per
// the best-effort delivery contract).
func (c *Client) TrySend(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	default:
		logger.Warnf("[chat] send queue full, dropping frame user=%s conn=%s",
			c.Identity.UserID, c.ConnID)
		return false
	}
}

// Close tears the handle down. Idempotent; multiple close signals are safe.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.WS != nil {
			_ = c.WS.Close()
		}
	})
}

// writePump is the single writer for the connection. Runs until the handle
// closes or a write fails.
func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.Send:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debugf("[chat] write failed user=%s conn=%s err=%v",
					c.Identity.UserID, c.ConnID, err)
				c.Close()
				return
			}
		}
	}
}
