package redis

import "fmt"

// Key prefix for all game-related data
const keyPrefix = "crimeguessr"

// locationsKey returns the Redis key for the LIST of JSON-encoded locations
func locationsKey() string {
	return fmt.Sprintf("%s:locations", keyPrefix)
}

// historyKey returns the Redis key for the LIST of completed games, newest first
func historyKey() string {
	return fmt.Sprintf("%s:games", keyPrefix)
}
