package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

// Client is one websocket connection.
type Client struct {
	ID   string
	Send chan ServerMessage

	conn *websocket.Conn
	hub  *Hub
	log  *logrus.Entry

	filterMu sync.RWMutex
	filter   Filter

	connectedAt time.Time
}

// NewClient creates a new client instance
func NewClient(id string, conn *websocket.Conn, hub *Hub, log *logrus.Entry) *Client {
	return &Client{
		ID:          id,
		Send:        make(chan ServerMessage, sendBufferSize),
		conn:        conn,
		hub:         hub,
		log:         log.WithField("client_id", id),
		connectedAt: time.Now(),
	}
}

// ReadPump reads subscription changes until the connection drops.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for ctx.Err() == nil {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Debug("unexpected close")
			}
			return
		}
		c.handleMessage(msg)
	}
}

// WritePump writes queued messages and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a message without blocking. It reports false when the
// client's buffer is full.
func (c *Client) TrySend(msg ServerMessage) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// SetFilter replaces the client's subscription filter.
func (c *Client) SetFilter(f Filter) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	c.filter = f
}

// Filter returns the client's subscription filter.
func (c *Client) Filter() Filter {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return c.filter
}

func (c *Client) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSubscribe:
		c.SetFilter(msg.Filter)
		c.log.WithFields(logrus.Fields{"leagues": msg.Filter.Leagues, "teams": msg.Filter.Teams}).Debug("subscribed")
	case MessageTypeUnsubscribe:
		c.SetFilter(Filter{})
	case MessageTypeHeartbeat:
		c.TrySend(ServerMessage{
			Type:      MessageTypeHeartbeat,
			Payload:   map[string]interface{}{"client_id": c.ID, "connected_at": c.connectedAt},
			Timestamp: time.Now(),
		})
	default:
		c.TrySend(ServerMessage{
			Type: MessageTypeError,
			Payload: ErrorMessage{
				Code:    "unknown_message_type",
				Message: fmt.Sprintf("unknown message type: %s", msg.Type),
			},
			Timestamp: time.Now(),
		})
	}
}
