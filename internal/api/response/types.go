package response

import (
	"time"

	"github.com/mcoot/crimeguessr/internal/model"
)

// Health reports server liveness and whether rooms can be created
type Health struct {
	Status              string `json:"status"`
	DataSourceAvailable bool   `json:"data_source_available"`
	LocationCount       int    `json:"location_count"`
	ActiveRooms         int    `json:"active_rooms"`
}

// RoomSummary is a room in list responses
type RoomSummary struct {
	Code         string    `json:"code"`
	Status       string    `json:"status"`
	CurrentRound int       `json:"current_round"`
	TotalRounds  int       `json:"total_rounds"`
	PlayerCount  int       `json:"player_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoomSummaryFromModel converts model.RoomView
func RoomSummaryFromModel(v model.RoomView) RoomSummary {
	return RoomSummary{
		Code:         string(v.Code),
		Status:       string(v.Status),
		CurrentRound: v.CurrentRound,
		TotalRounds:  v.TotalRounds,
		PlayerCount:  len(v.Players),
		CreatedAt:    v.CreatedAt,
	}
}

// RoomList wraps the live rooms
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// Room is a single room with its players
type Room struct {
	RoomSummary
	Players []model.PlayerView `json:"players"`
}

// RoomFromModel converts model.RoomView
func RoomFromModel(v model.RoomView) Room {
	players := v.Players
	if players == nil {
		players = []model.PlayerView{}
	}
	return Room{
		RoomSummary: RoomSummaryFromModel(v),
		Players:     players,
	}
}

// GameList wraps completed games, newest first
type GameList struct {
	Games []model.GameSummary `json:"games"`
}

// LocationStats describes the location pool
type LocationStats struct {
	Count     int  `json:"count"`
	Available bool `json:"available"`
}

// ImportResult reports a dataset import
type ImportResult struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}
