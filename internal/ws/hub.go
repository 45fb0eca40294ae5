package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Hub maintains the set of active clients and routes messages.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Incoming   chan *ClientMessage
	mu         sync.RWMutex
	nextID     atomic.Uint64
	done       chan struct{}

	// OnMessage is called for each incoming client message.
	OnMessage func(cm *ClientMessage)
	// OnConnect is called after a client is registered.
	OnConnect func(client *Client)
	// OnDisconnect is called when a client disconnects.
	OnDisconnect func(client *Client)
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Incoming:   make(chan *ClientMessage, 256),
		done:       make(chan struct{}),
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Connect hands a new client to the hub. It reports false once the hub has stopped.
func (h *Hub) Connect(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// deliver queues an incoming message. It reports false once the hub has stopped.
func (h *Hub) deliver(cm *ClientMessage) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.Incoming <- cm:
		return true
	case <-h.done:
		return false
	}
}

// NextClientID returns a connection id unique for the lifetime of the hub.
func (h *Hub) NextClientID() string {
	return fmt.Sprintf("client-%d", h.nextID.Add(1))
}

// Run starts the hub's main loop. It returns when ctx is done, closing every
// client's send channel. Run must not be called more than once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			h.mu.Unlock()
			slog.Info("client connected", "client", client.ID, "encoding", client.Encoding.String())
			if h.OnConnect != nil {
				h.OnConnect(client)
			}

		case client := <-h.Unregister:
			h.mu.Lock()
			_, ok := h.Clients[client]
			if ok {
				delete(h.Clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			if !ok {
				continue
			}
			slog.Info("client disconnected", "client", client.ID)
			if h.OnDisconnect != nil {
				h.OnDisconnect(client)
			}

		case cm := <-h.Incoming:
			if h.OnMessage != nil {
				h.OnMessage(cm)
			}

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.Clients {
				delete(h.Clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			slog.Info("hub stopped")
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients)
}
