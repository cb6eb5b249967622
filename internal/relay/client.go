package relay

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum inbound message size. Imports carry whole snapshots, so
	// this is generous.
	maxMessageSize = 1 << 20
	// Outbound buffer per connection before the peer is considered stuck.
	sendBuffer = 256
)

// Client is one websocket connection attached to one session's room. It
// pumps inbound envelopes to the hub and outbound envelopes to the peer.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	send      chan Envelope
	logger    *slog.Logger
}

// NewClient wraps an upgraded websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string, logger *slog.Logger) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan Envelope, sendBuffer),
		logger:    logger,
	}
}

// SessionID returns the room key this connection joined with.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Send enqueues an outbound envelope without blocking the hub. A peer
// that cannot drain its buffer is disconnected; it can reconnect and
// receive a fresh replica.
func (c *Client) Send(env Envelope) {
	select {
	case c.send <- env:
	default:
		c.logger.Warn("dropping stuck connection", "session", c.sessionID)
		c.conn.Close()
	}
}

// ReadPump decodes inbound envelopes onto the hub until the connection
// dies, then unregisters.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("connection closed unexpectedly", "session", c.sessionID, "error", err)
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("discarding malformed frame", "session", c.sessionID, "error", err)
			continue
		}
		c.hub.Dispatch(c, env)
	}
}

// WritePump writes outbound envelopes and keepalive pings until the
// connection dies.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
