// Package kvcache provides TTL-scoped key-value stores for ephemeral state
// such as dialogue history. The Redis store backs production; the memory
// store serves development and tests.
package kvcache

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// RedisStore implements domain.KVStore on go-redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore dials addr and verifies connectivity.
func NewRedisStore(ctx domain.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("op=kvcache.dial addr=%s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Get returns the value for key, with found=false on a miss.
func (s *RedisStore) Get(ctx domain.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("op=kvcache.get key=%s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key for ttl.
func (s *RedisStore) Set(ctx domain.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("op=kvcache.set key=%s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }
