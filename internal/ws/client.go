package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single authenticated WebSocket connection.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Rooms  []string
	Send   chan []byte

	hub  *Hub
	conn Conn
}

// NewClient binds a connection to the hub for the given user. The client must
// still be registered before it receives broadcasts.
func NewClient(hub *Hub, conn Conn, userID uuid.UUID, sendBuffer int) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Rooms:  []string{},
		Send:   make(chan []byte, sendBuffer),
		hub:    hub,
		conn:   conn,
	}
}

// UserRoom returns the personal room every client auto-joins on connect.
func UserRoom(userID uuid.UUID) string {
	return "user-" + userID.String()
}

// ReadPump reads inbound messages and dispatches them to handle. It
// unregisters the client and closes the connection when the peer goes away.
// Malformed frames are ignored.
func (c *Client) ReadPump(handle func(*Client, ClientMessage)) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		handle(c, msg)
	}
}

// WritePump drains the Send channel onto the wire until it is closed.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.Send {
		if err := c.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// GorillaConn wraps a gorilla/websocket.Conn to satisfy Conn.
type GorillaConn struct {
	*gorillawebsocket.Conn
}
