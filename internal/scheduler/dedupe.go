package scheduler

import (
	"context"
	"fmt"
	"time"

	"backflow_portal_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "analytics:alert:"

// Deduper suppresses repeated alerts for the same subject within a TTL.
type Deduper interface {
	// Claim reports whether key was not seen within the TTL and marks it seen.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a failed delivery can be retried.
	Release(ctx context.Context, key string) error
}

// RedisDeduper implements Deduper with SET NX and an expiry.
type RedisDeduper struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper. A non-positive ttl defaults to one week.
func NewRedisDeduper(client redis.Cmdable, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// NewRedisClient opens a go-redis client from the scheduler Redis URL.
func NewRedisClient(cfg config.SchedulerConfig) (*redis.Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := parseRedisURL(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func (d *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupeKeyPrefix+key, time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim alert key: %w", err)
	}
	return ok, nil
}

func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, dedupeKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release alert key: %w", err)
	}
	return nil
}

// NoopDeduper lets every alert through.
type NoopDeduper struct{}

func (NoopDeduper) Claim(context.Context, string) (bool, error) { return true, nil }
func (NoopDeduper) Release(context.Context, string) error       { return nil }
