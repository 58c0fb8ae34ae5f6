// Package network streams simulation events to WebSocket observers. The
// stream is one-directional: clients receive events and state pushes but
// cannot mutate the simulation over the socket.
package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"microcity/server/internal/events"
	"microcity/server/internal/platform/logger"
	"microcity/server/internal/platform/metrics"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	metrics    *metrics.Collector
}

// NewHub initializes a new WebSocket Hub.
func NewHub(log *logger.Logger, collector *metrics.Collector) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		metrics:    collector,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.metrics != nil {
				h.metrics.RecordWSConnection(1)
			}
			h.logger.Info("New WebSocket observer connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if h.metrics != nil {
					h.metrics.RecordWSConnection(-1)
				}
				h.logger.Info("WebSocket observer disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					if h.metrics != nil {
						h.metrics.RecordWSMessage()
					}
				default:
					// Slow consumer; drop the connection rather than the tick.
					close(client.send)
					delete(h.clients, client)
					if h.metrics != nil {
						h.metrics.RecordWSConnection(-1)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount reports the number of connected observers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastEvent serializes a simulation event and sends it to all clients.
func (h *Hub) BroadcastEvent(event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordWSError()
		}
		h.logger.Errorf("Failed to serialize event for WebSocket broadcast: %v", err)
		return
	}
	h.broadcast <- payload
}

// StartEventPoller spawns a goroutine that polls the event log and pushes new
// events to the Hub. The hub runs independently from the tick loop while
// picking up the same events; the replay cursor keeps delivery gap-free as
// long as the poller stays within the log's retention window.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.Log) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		var cursor uint64

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				var newEvents []events.Event
				newEvents, cursor = eventLog.ReplaySince(cursor)
				for _, event := range newEvents {
					h.BroadcastEvent(event)
				}
			}
		}
	}()
}
