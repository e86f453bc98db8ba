package ws

import (
	"context"
	"log/slog"
)

// Hub maintains the set of live feed subscribers and fans each broadcast
// out to all of them. A slow or dead subscriber is dropped on the spot so
// it can never hold up the others or the ingestion side.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// done is closed when Run returns. Register and unregister sends
	// select on it so subscribers arriving or leaving during shutdown
	// never block on a loop that is gone.
	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 8),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run owns the clients map; all membership changes and broadcasts go
// through its channels, so no locking is needed. Returns when ctx is done,
// closing every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			slog.Debug("Feed subscriber registered", "subscribers", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				slog.Debug("Feed subscriber unregistered", "subscribers", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					slog.Warn("Feed subscriber too slow, dropping", "subscribers", len(h.clients)-1)
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast queues one message for every current subscriber. Non-blocking:
// if the hub itself is backed up the tick is skipped, the next one carries
// fresher state anyway.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
	}
}

// RegisterClient adds a new subscriber to the hub. If the hub has already
// shut down the client's send channel is closed instead, which makes its
// write pump send the close frame and exit.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
