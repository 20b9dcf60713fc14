package model

import "encoding/json"

// EventType identifies the type of event
type EventType string

// Inbound events (client to server)
const (
	EventCreateRoom        EventType = "create_room"
	EventJoinRoom          EventType = "join_room"
	EventStartGame         EventType = "start_game"
	EventSubmitGuess       EventType = "submit_guess"
	EventReadyForNextRound EventType = "ready_for_next_round"
)

// Outbound events (server to client)
const (
	EventConnected    EventType = "connected"
	EventRoomCreated  EventType = "room_created"
	EventRoomJoined   EventType = "room_joined"
	EventPlayerJoined EventType = "player_joined"
	EventReadyToStart EventType = "ready_to_start"
	EventRoundStart   EventType = "round_start"
	EventRoundEnd     EventType = "round_end"
	EventGameEnd      EventType = "game_end"
	EventRoomClosed   EventType = "room_closed"
	EventPlayerLeft   EventType = "player_left"
	EventError        EventType = "error"
)

// Event is an outbound message addressed to one connection
type Event struct {
	Type    EventType `json:"event"`
	Payload any       `json:"data"`
}

// InboundEvent is a decoded client message; Data is decoded per Type
type InboundEvent struct {
	Type EventType       `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Inbound payloads

// CreateRoomPayload requests a new room
type CreateRoomPayload struct {
	PlayerName string `json:"player_name"`
}

// JoinRoomPayload requests a seat in an existing room
type JoinRoomPayload struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
}

// RoomPayload addresses a room without further data
type RoomPayload struct {
	RoomCode string `json:"room_code"`
}

// SubmitGuessPayload carries a player's guess
type SubmitGuessPayload struct {
	RoomCode  string   `json:"room_code"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Outbound payloads

// ConnectedPayload greets a new connection
type ConnectedPayload struct {
	ConnectionID ConnectionID `json:"connection_id"`
}

// SeatPayload acknowledges room_created and room_joined
type SeatPayload struct {
	RoomCode RoomCode     `json:"room_code"`
	PlayerID ConnectionID `json:"player_id"`
}

// PlayersPayload carries the current membership
type PlayersPayload struct {
	Players []PlayerView `json:"players"`
}

// ReadyToStartPayload signals that both seats are filled
type ReadyToStartPayload struct{}

// RoundStartPayload announces a new round
type RoundStartPayload struct {
	Round       int            `json:"round"`
	TotalRounds int            `json:"total_rounds"`
	Location    PublicLocation `json:"location"`
	TimeLimit   int            `json:"time_limit"`
}

// RoundEndPayload reveals the location and the round's results
type RoundEndPayload struct {
	ActualLocation RevealedLocation `json:"actual_location"`
	Results        []RoundResult    `json:"results"`
	CurrentRound   int              `json:"current_round"`
}

// GameEndPayload carries final standings
type GameEndPayload struct {
	FinalScores []FinalScore `json:"final_scores"`
	Winner      string       `json:"winner"`
}

// RoomClosedPayload tells remaining members the room is gone
type RoomClosedPayload struct {
	Message string `json:"message"`
}

// PlayerLeftPayload tells remaining members who is still seated
type PlayerLeftPayload struct {
	Message string       `json:"message"`
	Players []PlayerView `json:"players"`
}

// ErrorPayload reports a failed request
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
