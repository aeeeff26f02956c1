package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keyspace
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   newKeyspace(cfg.KeyPrefix),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) SaveGame(ctx context.Context, record *model.GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.game(record.ID), data, s.cfg.GameTTL)
	pipe.ZAdd(ctx, s.keys.gameIndex(), redis.Z{
		Score:  float64(record.UpdatedAt.UnixMilli()),
		Member: string(record.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	data, err := s.client.Get(ctx, s.keys.game(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var record model.GameRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keys.game(id))
	pipe.ZRem(ctx, s.keys.gameIndex(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.GameRecord, error) {
	ids, err := s.client.ZRevRange(ctx, s.keys.gameIndex(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.GameRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.game(model.GameID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.GameRecord, 0, len(values))
	var expired []any
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			expired = append(expired, ids[i]) // Game key expired
			continue
		}
		var record model.GameRecord
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			continue // Skip invalid data
		}
		records = append(records, &record)
	}
	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, s.keys.gameIndex(), expired...).Err(); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Preset operations

func (s *Storage) SavePreset(ctx context.Context, preset *model.Preset) error {
	data, err := json.Marshal(preset)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.preset(preset.Name), data, 0) // No TTL
	pipe.SAdd(ctx, s.keys.presetIndex(), preset.Name)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPreset(ctx context.Context, name string) (*model.Preset, error) {
	data, err := s.client.Get(ctx, s.keys.preset(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPresetNotFound
		}
		return nil, err
	}

	var preset model.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, err
	}
	return &preset, nil
}

func (s *Storage) DeletePreset(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keys.preset(name))
	pipe.SRem(ctx, s.keys.presetIndex(), name)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPresets(ctx context.Context) ([]*model.Preset, error) {
	names, err := s.client.SMembers(ctx, s.keys.presetIndex()).Result()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []*model.Preset{}, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.keys.preset(name)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	presets := make([]*model.Preset, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var preset model.Preset
		if err := json.Unmarshal([]byte(str), &preset); err != nil {
			continue // Skip invalid data
		}
		presets = append(presets, &preset)
	}
	slices.SortFunc(presets, func(a, b *model.Preset) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return presets, nil
}
