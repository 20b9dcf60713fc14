package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/crimeguessr/internal/metrics"
	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/services/notify"
)

// Hub tracks every open connection and delivers events to them
type Hub struct {
	clients map[model.ConnectionID]*Client
	mu      sync.RWMutex
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Ensure Hub implements Notifier
var _ notify.Notifier = (*Hub)(nil)

// NewHub creates a new Hub
func NewHub(metrics *metrics.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnectionID]*Client),
		metrics: metrics,
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.metrics.ConnectedClients.Set(float64(clientCount))
	h.logger.Info("ws client registered",
		slog.String("connection_id", string(client.id)),
		slog.Int("total_clients", clientCount))
}

// Unregister removes a client and closes its send queue
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if h.clients[client.id] != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	close(client.send)
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.metrics.ConnectedClients.Set(float64(clientCount))
	h.logger.Info("ws client unregistered",
		slog.String("connection_id", string(client.id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

// Notify queues an event for one connection. It never blocks: if the
// connection is gone or its queue is full the event is dropped.
func (h *Hub) Notify(to model.ConnectionID, ev model.Event) {
	message, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("ws failed to encode event",
			slog.String("event", string(ev.Type)),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[to]
	if !ok {
		return
	}
	select {
	case client.send <- message:
	default:
		h.metrics.DroppedMessages.Inc()
		h.logger.Warn("ws message dropped - client buffer full",
			slog.String("connection_id", string(to)),
			slog.String("event", string(ev.Type)))
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	clientCount := len(h.clients)
	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	h.metrics.ConnectedClients.Set(0)
	h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", clientCount))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
