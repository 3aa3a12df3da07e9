package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "sokoni:http:"
	redisOpTimeout = 2 * time.Second
)

// RedisCache stores responses in Redis so several clients can share them.
// Expiry is delegated to Redis, using the same per-path lifetimes as the
// file cache.
type RedisCache struct {
	client *redis.Client
	opts   options
}

// NewRedisCache connects to the Redis server at rawURL
// (redis://[:password@]host:port/db) and verifies it answers.
func NewRedisCache(ctx context.Context, rawURL string, ttl time.Duration, opts ...Option) (*RedisCache, error) {
	redisOpts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisCacheFromClient(client, ttl, opts...), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration, opts ...Option) *RedisCache {
	return &RedisCache{client: client, opts: newOptions(ttl, opts)}
}

func (c *RedisCache) key(key string) string {
	hash := sha256.Sum256([]byte(key))
	return redisKeyPrefix + hex.EncodeToString(hash[:])
}

// Get retrieves a value from the cache
func (c *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value in the cache. A zero lifetime stores nothing, since
// Redis would read it as "never expire".
func (c *RedisCache) Set(key string, value []byte) error {
	ttl := c.opts.ttlFor(key)
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// Clear removes all entries written by this cache
func (c *RedisCache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*redisOpTimeout)
	defer cancel()

	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close releases the connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}
