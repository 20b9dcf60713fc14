package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrAlreadyInRoom       = errors.New("connection is already seated in a room")
	ErrInvalidPlayerOrRoom = errors.New("invalid game or player")
	ErrInsufficientPlayers = errors.New("insufficient players to start game")
	ErrGameInProgress      = errors.New("game has already started")

	// Round errors
	ErrRoundNotActive    = errors.New("no round is accepting guesses")
	ErrInvalidCoordinate = errors.New("coordinate out of range")

	// Location errors
	ErrLocationUnavailable   = errors.New("location unavailable")
	ErrDataSourceUnavailable = errors.New("location data source unavailable")
	ErrNoLocations           = errors.New("no locations loaded")

	// Transport errors
	ErrInvalidEvent = errors.New("invalid event")
)
