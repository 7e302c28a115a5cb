package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Deduplicator remembers processed event ids for a limited time.
type Deduplicator interface {
	// Claim marks id as seen. It returns false when id was claimed before.
	Claim(ctx context.Context, id string) (bool, error)
	// Forget drops the mark so the event can be processed again.
	Forget(ctx context.Context, id string) error
}

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const keyPrefix = "digimarket:payment-event:"

// RedisDeduplicator stores marks with SETNX and a TTL.
type RedisDeduplicator struct {
	client redisClient
	ttl    time.Duration
}

func NewRedisDeduplicator(client redisClient, ttl time.Duration) *RedisDeduplicator {
	return &RedisDeduplicator{client: client, ttl: ttl}
}

func (d *RedisDeduplicator) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := d.client.SetNX(ctx, keyPrefix+id, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", id, err)
	}
	return ok, nil
}

func (d *RedisDeduplicator) Forget(ctx context.Context, id string) error {
	if err := d.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("forget event %s: %w", id, err)
	}
	return nil
}

// Noop accepts every event. Used when Redis is not configured.
type Noop struct{}

func (Noop) Claim(context.Context, string) (bool, error) { return true, nil }

func (Noop) Forget(context.Context, string) error { return nil }
