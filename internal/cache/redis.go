package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for the freshness check on read.
func (c *RedisStore) WithClock(now func() time.Time) *RedisStore {
	c.now = now
	return c
}

func buildKey(userID int64) string {
	return fmt.Sprintf("rec:implicit:user:%d", userID)
}

// Get recommendations from cache
func (c *RedisStore) Get(ctx context.Context, userID int64) (Entry, bool, error) {
	key := buildKey(userID)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return Entry{}, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}

	// Expiry can lag the TTL; never serve a stale entry.
	if !entry.Fresh(c.now(), c.ttl) {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Store recommendations in cache
func (c *RedisStore) Set(ctx context.Context, userID int64, entry Entry) error {
	key := buildKey(userID)
	val, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	remaining := c.ttl - c.now().Sub(entry.FetchedAt)
	if remaining <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, key, val, remaining).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}
	return nil
}

// Ping connectivity
func (c *RedisStore) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
