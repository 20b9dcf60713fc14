package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/crimeguessr/internal/services/scoring"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Log output formats
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config is the server configuration, read from the environment
type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"8080"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	LocationsCSV     string `env:"LOCATIONS_CSV" envDefault:"data/locations.csv"`
	GoogleMapsAPIKey string `env:"GOOGLE_MAPS_API_KEY"`

	MaxRounds        int           `env:"MAX_ROUNDS" envDefault:"3"`
	RoundTimeLimit   time.Duration `env:"ROUND_TIME_LIMIT" envDefault:"30s"`
	ScoringCurve     string        `env:"SCORING_CURVE" envDefault:"linear"`
	GameHistoryLimit int           `env:"GAME_HISTORY_LIMIT" envDefault:"50"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the configuration from the environment and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting
func (c Config) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageTypeMemory, StorageTypeRedis, c.StorageType))
	}
	if c.MaxRounds < 1 {
		errs = append(errs, fmt.Errorf("MAX_ROUNDS must be at least 1, got %d", c.MaxRounds))
	}
	if c.RoundTimeLimit < time.Second {
		errs = append(errs, fmt.Errorf("ROUND_TIME_LIMIT must be at least 1s, got %s", c.RoundTimeLimit))
	}
	if _, err := scoring.CurveByName(c.ScoringCurve); err != nil {
		errs = append(errs, fmt.Errorf("SCORING_CURVE: %w", err))
	}
	if c.GameHistoryLimit < 1 {
		errs = append(errs, fmt.Errorf("GAME_HISTORY_LIMIT must be at least 1, got %d", c.GameHistoryLimit))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatText {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatText, c.LogFormat))
	}

	return errors.Join(errs...)
}

// Addr returns the HTTP listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel converts LOG_LEVEL to a slog level
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
