package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	ID            string
	AccountID     string // Set after authentication
	Nickname      string // Set after authentication
	Authenticated bool
	Encoding      Encoding
	Hub           *Hub
	Conn          *websocket.Conn
	Send          chan Frame

	sendMu sync.Mutex
	closed bool
}

// NewClient creates a new Client.
func NewClient(id string, hub *Hub, conn *websocket.Conn, enc Encoding) *Client {
	return &Client{
		ID:       id,
		Encoding: enc,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan Frame, sendBuffer),
	}
}

// ReadPump pumps messages from the WebSocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("websocket read error", "client", c.ID, "error", err)
			}
			break
		}
		if !c.Hub.deliver(&ClientMessage{Client: c, Binary: kind == websocket.BinaryMessage, Data: message}) {
			break
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			kind := websocket.TextMessage
			if frame.Binary {
				kind = websocket.BinaryMessage
			}
			w, err := c.Conn.NextWriter(kind)
			if err != nil {
				return
			}
			w.Write(frame.Data)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage sends a control Message to this client as JSON text.
func (c *Client) SendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal message", "error", err)
		return
	}
	c.enqueue(Frame{Data: data})
}

// SendTyped sends a payload in the client's negotiated encoding: a msgpack
// envelope for binary clients, a JSON Message otherwise. Used for the
// per-tick traffic.
func (c *Client) SendTyped(msgType string, payload any) {
	if c.Encoding == EncodingMsgpack {
		data, err := EncodeBinaryMessage(msgType, payload)
		if err != nil {
			slog.Error("failed to encode binary message", "type", msgType, "error", err)
			return
		}
		c.enqueue(Frame{Binary: true, Data: data})
		return
	}

	msg, err := NewMessage(msgType, payload)
	if err != nil {
		slog.Error("failed to marshal message", "type", msgType, "error", err)
		return
	}
	c.SendMessage(msg)
}

func (c *Client) enqueue(f Frame) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- f:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ID)
	}
}

// closeSend closes Send once; later sends are dropped.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Close closes the underlying connection, if any.
func (c *Client) Close() {
	if c.Conn != nil {
		c.Conn.Close()
	}
}

// ClientMessage wraps a raw message with its source client.
type ClientMessage struct {
	Client *Client
	Binary bool
	Data   []byte
}

// Decode parses the raw frame into a Message.
func (cm *ClientMessage) Decode() (Message, error) {
	return DecodeMessage(cm.Binary, cm.Data)
}
