package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
)

type RedisCleanerCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCleanerCache wraps an already connected client.
func NewRedisCleanerCache(client *redis.Client, prefix string) *RedisCleanerCache {
	return &RedisCleanerCache{
		client: client,
		prefix: prefix,
	}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func (c *RedisCleanerCache) key(cleanerID string) string {
	return fmt.Sprintf("%s:cleaner:%s", c.prefix, cleanerID)
}

func (c *RedisCleanerCache) Get(ctx context.Context, cleanerID string) (*domain.UserResponse, error) {
	data, err := c.client.Get(ctx, c.key(cleanerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var result domain.UserResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &result, nil
}

func (c *RedisCleanerCache) Set(ctx context.Context, cleanerID string, cleaner *domain.UserResponse, ttl time.Duration) error {
	data, err := json.Marshal(cleaner)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key(cleanerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisCleanerCache) Delete(ctx context.Context, cleanerIDs ...string) error {
	if len(cleanerIDs) == 0 {
		return nil
	}

	keys := make([]string, len(cleanerIDs))
	for i, id := range cleanerIDs {
		keys[i] = c.key(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

var (
	_ CleanerCache = (*RedisCleanerCache)(nil)
	_ CleanerCache = NoopCleanerCache{}
)
