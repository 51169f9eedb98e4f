package dedup

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by Redis, for multi-process deployments where
// redelivery can land on a different host than the original delivery.
type Redis struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	// KeyPrefix namespaces the keys. Default: "courier:dedup:".
	KeyPrefix string
	// TTL bounds how long processed markers are kept.
	// Default: 24 hours.
	TTL time.Duration
}

func (c RedisConfig) defaults() RedisConfig {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "courier:dedup:"
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
	return c
}

// NewRedis creates a Redis-backed store.
func NewRedis(client redis.UniversalClient, config RedisConfig) *Redis {
	cfg := config.defaults()
	return &Redis{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
	}
}

// Seen reports whether the key exists.
func (r *Redis) Seen(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+key).Result()
	if err != nil {
		return false, errors.Wrap(err, "dedup: redis exists")
	}
	return n > 0, nil
}

// MarkProcessed records the key with the configured TTL.
func (r *Redis) MarkProcessed(ctx context.Context, key string) error {
	if err := r.client.Set(ctx, r.keyPrefix+key, "1", r.ttl).Err(); err != nil {
		return errors.Wrap(err, "dedup: redis set")
	}
	return nil
}
