package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on a Redis server.
// Used by serve deployments so multiple instances share one resource map:
// a font fetched by any instance is substitutable by all of them.
type RedisCache struct {
	client *redis.Client
}

// RedisConfig holds connection settings for the Redis backends.
type RedisConfig struct {
	Addr     string // host:port, e.g. "localhost:6379"
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in Redis. A TTL of 0 stores without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// RedisSet implements SeenSet as a Redis set under a single key.
type RedisSet struct {
	client *redis.Client
	key    string
}

// NewRedisSet connects to Redis and stores members under key.
func NewRedisSet(ctx context.Context, cfg RedisConfig, key string) (*RedisSet, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisSet{client: client, key: key}, nil
}

// Has reports whether member was previously added.
func (s *RedisSet) Has(ctx context.Context, member string) (bool, error) {
	return s.client.SIsMember(ctx, s.key, member).Result()
}

// Add records member in the set.
func (s *RedisSet) Add(ctx context.Context, member string) error {
	return s.client.SAdd(ctx, s.key, member).Err()
}

// Close closes the Redis connection.
func (s *RedisSet) Close() error {
	return s.client.Close()
}

// Ensure the Redis backends implement their interfaces.
var (
	_ Cache   = (*RedisCache)(nil)
	_ SeenSet = (*RedisSet)(nil)
)
