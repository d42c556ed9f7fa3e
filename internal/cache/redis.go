package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"StockTracker/internal/model"
)

// RedisCache shares chart payloads between server instances.
type RedisCache struct {
	RDB *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{RDB: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.RDB.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.ChartPayload, bool, error) {
	res, err := c.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var p model.ChartPayload
	if err := json.Unmarshal(res, &p); err != nil {
		return nil, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return &p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, p *model.ChartPayload, ttl time.Duration) error {
	encoded, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return c.RDB.Set(ctx, key, encoded, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.RDB.Del(ctx, keys...).Err()
}

func (c *RedisCache) Close() error {
	return c.RDB.Close()
}
