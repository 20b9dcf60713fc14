package ws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/crimeguessr/internal/model"
)

// Dispatcher receives connection lifecycle and inbound messages
type Dispatcher interface {
	Connect(ctx context.Context, conn model.ConnectionID)
	Dispatch(ctx context.Context, conn model.ConnectionID, message []byte)
	Disconnect(ctx context.Context, conn model.ConnectionID)
}

// Handler upgrades HTTP requests to game connections
type Handler struct {
	hub        *Hub
	dispatcher Dispatcher
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a new Handler. An allowedOrigins entry of "*" accepts
// any origin.
func NewHandler(hub *Hub, dispatcher Dispatcher, allowedOrigins []string, logger *slog.Logger) *Handler {
	h := &Handler{
		hub:        hub,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "ws")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(allowedOrigins, r.Header.Get("Origin"))
		},
	}
	return h
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

// ServeHTTP runs one connection until it closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Info("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(model.ConnectionID(uuid.NewString()), conn)
	h.hub.Register(client)
	go client.writePump()

	// Disconnect cleanup must not be cut short by request cancellation
	ctx := context.WithoutCancel(r.Context())

	h.dispatcher.Connect(ctx, client.id)
	client.readPump(ctx, h.dispatcher, h.logger)

	h.dispatcher.Disconnect(ctx, client.id)
	h.hub.Unregister(client)
}
