package jwt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// VersionStore tracks a per-user token version. Bumping the version revokes
// every token carrying an older one.
type VersionStore interface {
	Current(ctx context.Context, userID string) (int64, error)
	Bump(ctx context.Context, userID string) (int64, error)
}

// MemoryVersionStore keeps versions in process memory. Revocations are lost on restart.
type MemoryVersionStore struct {
	mu       sync.RWMutex
	versions map[string]int64
}

// NewMemoryVersionStore creates an empty in-memory store.
func NewMemoryVersionStore() *MemoryVersionStore {
	return &MemoryVersionStore{versions: make(map[string]int64)}
}

func (s *MemoryVersionStore) Current(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[userID], nil
}

func (s *MemoryVersionStore) Bump(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[userID]++
	return s.versions[userID], nil
}

// RedisVersionStore keeps versions in Redis so revocations survive restarts
// and are shared between API replicas.
type RedisVersionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisVersionStore creates a store using keys "<prefix>:<userID>".
func NewRedisVersionStore(client *redis.Client, prefix string) *RedisVersionStore {
	return &RedisVersionStore{client: client, prefix: prefix}
}

func (s *RedisVersionStore) key(userID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, userID)
}

func (s *RedisVersionStore) Current(ctx context.Context, userID string) (int64, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get token version from redis: %w", err)
	}
	return strconv.ParseInt(val, 10, 64)
}

func (s *RedisVersionStore) Bump(ctx context.Context, userID string) (int64, error) {
	v, err := s.client.Incr(ctx, s.key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump token version in redis: %w", err)
	}
	return v, nil
}
