package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// LayeredCache implements two-level cache (L1: ristretto, L2: Redis).
// L1 admission is probabilistic, so Redis stays the source of truth.
type LayeredCache struct {
	l1    *ristretto.Cache
	l2    *RedisCache
	l1TTL time.Duration
}

// NewLayeredCache creates a layered cache in front of Redis.
func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) (*LayeredCache, error) {
	cfg := &LayeredConfig{
		MaxCost: 32 << 20,
		L1TTL:   time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	l1, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxCost / 100,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create l1 cache: %w", err)
	}

	return &LayeredCache{l1: l1, l2: redisCache, l1TTL: cfg.L1TTL}, nil
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	// Write-through: Redis first, then memory
	if err := lc.l2.Set(ctx, key, data, expiration); err != nil {
		lc.l1.Del(key)
		return err
	}
	lc.l1.SetWithTTL(key, data, int64(len(data)), lc.ttl(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if v, ok := lc.l1.Get(key); ok {
		if data, ok := v.([]byte); ok {
			return decode(data, dest)
		}
	}

	data, err := lc.l2.getRaw(ctx, key)
	if err != nil {
		return err
	}
	lc.l1.SetWithTTL(key, data, int64(len(data)), lc.l1TTL)
	return decode(data, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		lc.l1.Del(k)
	}
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	return lc.l2.Exists(ctx, keys...)
}

func (lc *LayeredCache) Increment(ctx context.Context, key string) (int64, error) {
	lc.l1.Del(key)
	return lc.l2.Increment(ctx, key)
}

func (lc *LayeredCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	lc.l1.Del(key)
	return lc.l2.Expire(ctx, key, expiration)
}

func (lc *LayeredCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return lc.l2.TryLock(ctx, key, ttl)
}

func (lc *LayeredCache) Unlock(ctx context.Context, key string) error {
	return lc.l2.Unlock(ctx, key)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	lc.l1.Close()
	return lc.l2.Close()
}

func (lc *LayeredCache) ttl(expiration time.Duration) time.Duration {
	if expiration <= 0 || expiration > lc.l1TTL {
		return lc.l1TTL
	}
	return expiration
}
