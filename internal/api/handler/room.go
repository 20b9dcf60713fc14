package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/crimeguessr/internal/api/response"
	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/services/room"
)

// RoomHandler exposes read-only views of live rooms
type RoomHandler struct {
	registry *room.Registry
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(registry *room.Registry) *RoomHandler {
	return &RoomHandler{registry: registry}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	views := h.registry.List()
	rooms := make([]response.RoomSummary, len(views))
	for i, v := range views {
		rooms[i] = response.RoomSummaryFromModel(v)
	}
	response.JSON(w, http.StatusOK, response.RoomList{Rooms: rooms})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.registry.Get(mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	view, ok := sess.View()
	if !ok {
		WriteError(w, model.ErrRoomNotFound)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(view))
}
