package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "feeburn:result:"

// RedisCache stores results in Redis with a TTL, so several daemons can
// share one cache.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisCache connects to addr and verifies the server answers a PING.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	r := &RedisCache{client: rdb, ttl: ttl, timeout: 2 * time.Second}

	pingCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return r, nil
}

// Get returns the entry stored under key.
func (r *RedisCache) Get(key string) (Entry, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	val, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Put stores e under key with the cache TTL.
func (r *RedisCache) Put(key string, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.Set(ctx, redisKeyPrefix+key, payload, r.ttl).Err()
}

// Count returns the number of feeburn keys in Redis.
func (r *RedisCache) Count(ctx context.Context) (int, error) {
	var n int
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}

// Close closes the Redis client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
