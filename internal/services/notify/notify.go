package notify

import (
	"errors"

	"github.com/mcoot/crimeguessr/internal/model"
)

// Notifier delivers an event to a single connection. Delivery is
// at-most-once and must not block the caller.
type Notifier interface {
	Notify(to model.ConnectionID, ev model.Event)
}

// Room sends the event to every player currently seated in the room
func Room(n Notifier, room *model.Room, ev model.Event) {
	for _, id := range room.Members() {
		n.Notify(id, ev)
	}
}

// Error codes carried in error events
const (
	CodeRoomNotFound          = "ROOM_NOT_FOUND"
	CodeRoomFull              = "ROOM_FULL"
	CodeAlreadyInRoom         = "ALREADY_IN_ROOM"
	CodeInvalidPlayerOrRoom   = "INVALID_PLAYER_OR_ROOM"
	CodeInsufficientPlayers   = "INSUFFICIENT_PLAYERS"
	CodeGameInProgress        = "GAME_IN_PROGRESS"
	CodeRoundNotActive        = "ROUND_NOT_ACTIVE"
	CodeInvalidCoordinate     = "INVALID_COORDINATE"
	CodeLocationUnavailable   = "LOCATION_UNAVAILABLE"
	CodeDataSourceUnavailable = "DATA_SOURCE_UNAVAILABLE"
	CodeInvalidEvent          = "INVALID_EVENT"
	CodeInternalError         = "INTERNAL_ERROR"
)

// ErrorEvent converts an error into the error event shown to clients
func ErrorEvent(err error) model.Event {
	code, message := describe(err)
	return model.Event{
		Type:    model.EventError,
		Payload: model.ErrorPayload{Code: code, Message: message},
	}
}

// ErrorCode returns the client-facing code for an error
func ErrorCode(err error) string {
	code, _ := describe(err)
	return code
}

func describe(err error) (code, message string) {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return CodeRoomNotFound, "Room not found"
	case errors.Is(err, model.ErrRoomFull):
		return CodeRoomFull, "Room full"
	case errors.Is(err, model.ErrAlreadyInRoom):
		return CodeAlreadyInRoom, "Already in a room"
	case errors.Is(err, model.ErrInvalidPlayerOrRoom):
		return CodeInvalidPlayerOrRoom, "Invalid game or player"
	case errors.Is(err, model.ErrInsufficientPlayers):
		return CodeInsufficientPlayers, "Need 2 players to start"
	case errors.Is(err, model.ErrGameInProgress):
		return CodeGameInProgress, "Game has already started"
	case errors.Is(err, model.ErrRoundNotActive):
		return CodeRoundNotActive, "No round is accepting guesses"
	case errors.Is(err, model.ErrInvalidCoordinate):
		return CodeInvalidCoordinate, "Latitude and longitude are out of range"
	case errors.Is(err, model.ErrLocationUnavailable):
		return CodeLocationUnavailable, "Failed to get location"
	case errors.Is(err, model.ErrDataSourceUnavailable):
		return CodeDataSourceUnavailable, "Server error: Crime data not loaded"
	case errors.Is(err, model.ErrInvalidEvent):
		return CodeInvalidEvent, "Invalid request"
	default:
		return CodeInternalError, "Internal server error"
	}
}
