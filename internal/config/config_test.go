package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageTypeMemory, cfg.StorageType)
	assert.Equal(t, "data/locations.csv", cfg.LocationsCSV)
	assert.Equal(t, 3, cfg.MaxRounds)
	assert.Equal(t, 30*time.Second, cfg.RoundTimeLimit)
	assert.Equal(t, "linear", cfg.ScoringCurve)
	assert.Equal(t, 50, cfg.GameHistoryLimit)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MAX_ROUNDS", "5")
	t.Setenv("ROUND_TIME_LIMIT", "45s")
	t.Setenv("SCORING_CURVE", "tiered")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, StorageTypeRedis, cfg.StorageType)
	assert.Equal(t, 5, cfg.MaxRounds)
	assert.Equal(t, 45*time.Second, cfg.RoundTimeLimit)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:             8080,
			StorageType:      StorageTypeMemory,
			MaxRounds:        3,
			RoundTimeLimit:   30 * time.Second,
			ScoringCurve:     "linear",
			GameHistoryLimit: 50,
			LogLevel:         "info",
			LogFormat:        LogFormatJSON,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "redis without url", mutate: func(c *Config) { c.StorageType = StorageTypeRedis }, wantErr: "REDIS_URL"},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageType = "disk" }, wantErr: "STORAGE_TYPE"},
		{name: "zero rounds", mutate: func(c *Config) { c.MaxRounds = 0 }, wantErr: "MAX_ROUNDS"},
		{name: "short time limit", mutate: func(c *Config) { c.RoundTimeLimit = time.Millisecond }, wantErr: "ROUND_TIME_LIMIT"},
		{name: "unknown curve", mutate: func(c *Config) { c.ScoringCurve = "cubic" }, wantErr: "SCORING_CURVE"},
		{name: "no history", mutate: func(c *Config) { c.GameHistoryLimit = 0 }, wantErr: "GAME_HISTORY_LIMIT"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "LOG_LEVEL"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LOG_FORMAT"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
