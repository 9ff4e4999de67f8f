package hub

import (
	"encoding/json"

	"github.com/gorilla/websocket"
)

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// Guarded by hub.mu.
	id       string
	role     Role
	windowID string
	title    string
	url      string
	width    float64
	height   float64
	active   bool
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		role: RoleMonitor,
	}
}

// ID returns the tab id assigned on registration.
func (c *Client) ID() string {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	return c.id
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPump reads client messages until the connection fails.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.hub.log.Warn("error parsing client message", "error", err)
		return
	}

	switch msg.Type {
	case ClientHello:
		if msg.Role == RolePage {
			c.hub.join(c, msg)
		}
	case ClientViewport:
		c.hub.setViewport(c, msg.Width, msg.Height)
	case ClientFocus:
		if msg.Focused {
			c.hub.focus(c)
		}
	default:
		c.hub.log.Debug("unknown client message", "type", msg.Type)
	}
}
