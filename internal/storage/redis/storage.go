package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/crimeguessr/internal/dependencies/random"
	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	random random.Random
}

// New creates a new Redis storage instance. rnd picks locations from the pool.
func New(cfg Config, rnd random.Random) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg, rnd), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, rnd random.Random) *Storage {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		random: rnd,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Location pool operations

func (s *Storage) SaveLocations(ctx context.Context, locations []model.LocationRecord) error {
	key := locationsKey()

	members := make([]any, 0, len(locations))
	for _, loc := range locations {
		data, err := json.Marshal(loc)
		if err != nil {
			return err
		}
		members = append(members, string(data))
	}

	// Replace the pool atomically so readers never see a half-loaded list.
	// A LIST keeps duplicate rows, so each dataset row is equally likely.
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.RPush(ctx, key, members...)
		}
		return nil
	})
	return err
}

// maxDrawAttempts bounds retries when the pool is replaced between LLEN and LINDEX
const maxDrawAttempts = 3

func (s *Storage) RandomLocation(ctx context.Context) (*model.LocationRecord, error) {
	key := locationsKey()

	for range maxDrawAttempts {
		n, err := s.client.LLen(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, model.ErrNoLocations
		}

		data, err := s.client.LIndex(ctx, key, int64(s.random.Intn(int(n)))).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var rec model.LocationRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode location: %w", err)
		}
		return &rec, nil
	}
	return nil, model.ErrNoLocations
}

func (s *Storage) LocationCount(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, locationsKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Game history operations

func (s *Storage) SaveGameSummary(ctx context.Context, summary *model.GameSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	key := historyKey()
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(s.cfg.HistoryLimit-1))
	if s.cfg.HistoryTTL > 0 {
		pipe.Expire(ctx, key, s.cfg.HistoryTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGameSummaries(ctx context.Context, limit int) ([]model.GameSummary, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	items, err := s.client.LRange(ctx, historyKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	games := make([]model.GameSummary, 0, len(items))
	for _, item := range items {
		var g model.GameSummary
		if err := json.Unmarshal([]byte(item), &g); err != nil {
			return nil, fmt.Errorf("decode game summary: %w", err)
		}
		games = append(games, g)
	}
	return games, nil
}
