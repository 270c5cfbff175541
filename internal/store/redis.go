package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"furniture-catalog/internal/domain"
)

// RedisStore keeps the collection as one JSON value under a single key,
// so a save is a single SET.
type RedisStore struct {
	client *redis.Client
	key    string
}

// OpenRedis parses url, applies pool settings and verifies connectivity.
func OpenRedis(ctx context.Context, url, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("store: failed to parse redis URL: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("store: failed to ping redis: %w", err)
	}
	return NewRedisStore(rdb, key), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) ([]domain.FurnitureItem, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.FurnitureItem{}, nil
		}
		return nil, persistenceErr("redis get "+s.key, err)
	}

	var items []domain.FurnitureItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, corruptErr("redis key "+s.key, err)
	}
	if items == nil {
		items = []domain.FurnitureItem{}
	}
	if err := checkCollection("redis key "+s.key, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RedisStore) Save(ctx context.Context, items []domain.FurnitureItem) error {
	if items == nil {
		items = []domain.FurnitureItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return persistenceErr("encode items", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return persistenceErr("redis set "+s.key, err)
	}
	return nil
}

func (s *RedisStore) GenerateID() string { return NewID() }

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
