package model

import (
	"math"
	"time"
)

// GameID uniquely identifies a completed game in the history
type GameID string

// RoundResult is one player's outcome for a scored round
type RoundResult struct {
	PlayerID   ConnectionID `json:"player_id"`
	PlayerName string       `json:"player_name"`
	DistanceKM float64      `json:"distance_km"`
	RoundScore int          `json:"round_score"`
	TotalScore int          `json:"total_score"`
	Guess      Coordinate   `json:"guess"`
}

// FinalScore is a player's standing at the end of a game
type FinalScore struct {
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
}

// PlayerView is a player as presented to clients
type PlayerView struct {
	ID     ConnectionID `json:"id"`
	Name   string       `json:"name"`
	Score  int          `json:"score"`
	IsHost bool         `json:"is_host"`
}

// GameSummary records a completed game
type GameSummary struct {
	ID          GameID       `json:"id"`
	RoomCode    RoomCode     `json:"room_code"`
	FinalScores []FinalScore `json:"final_scores"`
	Winner      string       `json:"winner"`
	Rounds      int          `json:"rounds"`
	CompletedAt time.Time    `json:"completed_at"`
}

// RoundDistance rounds a distance to two decimal places for reporting
func RoundDistance(km float64) float64 {
	return math.Round(km*100) / 100
}

// RoomView is a read-only snapshot of a room for inspection endpoints. It
// never includes the current round's location.
type RoomView struct {
	Code         RoomCode     `json:"code"`
	Status       RoomStatus   `json:"status"`
	CurrentRound int          `json:"current_round"`
	TotalRounds  int          `json:"total_rounds"`
	Players      []PlayerView `json:"players"`
	CreatedAt    time.Time    `json:"created_at"`
}
