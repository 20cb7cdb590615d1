package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds the merged role bonus table between reads.
type Cache interface {
	Get(ctx context.Context) (map[string]int, bool, error)
	Set(ctx context.Context, bonuses map[string]int) error
	Invalidate(ctx context.Context) error
}

// RedisCache stores the merged table as JSON under one key.
type RedisCache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisCache creates a cache entry at key that expires after ttl.
func NewRedisCache(client redis.UniversalClient, key string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, key: key, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) (map[string]int, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read role bonus cache: %w", err)
	}

	var bonuses map[string]int
	if err := json.Unmarshal(data, &bonuses); err != nil {
		return nil, false, fmt.Errorf("failed to decode role bonus cache: %w", err)
	}
	return bonuses, true, nil
}

func (c *RedisCache) Set(ctx context.Context, bonuses map[string]int) error {
	data, err := json.Marshal(bonuses)
	if err != nil {
		return fmt.Errorf("failed to encode role bonus cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write role bonus cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate role bonus cache: %w", err)
	}
	return nil
}
