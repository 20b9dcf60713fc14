package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/crimeguessr/internal/api/response"
	"github.com/mcoot/crimeguessr/internal/storage"
)

// Limits for GET /api/v1/games
const (
	DefaultGamesLimit = 20
	MaxGamesLimit     = 100
)

// GameHandler serves the history of completed games
type GameHandler struct {
	storage storage.Storage
}

// NewGameHandler creates a new game handler
func NewGameHandler(storage storage.Storage) *GameHandler {
	return &GameHandler{storage: storage}
}

// List handles GET /api/v1/games?limit=N
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := DefaultGamesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = min(n, MaxGamesLimit)
	}

	games, err := h.storage.ListGameSummaries(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameList{Games: games})
}
