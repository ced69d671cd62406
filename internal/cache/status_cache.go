package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/lifecycle"

	"github.com/redis/go-redis/v9"
)

const keyOrderStatus = "order_status:%s"

// StatusCache keeps the last resolved status of an order for fast tracking reads.
type StatusCache interface {
	Get(ctx context.Context, orderID string) (lifecycle.Status, bool, error)
	Set(ctx context.Context, orderID string, status lifecycle.Status) error
	Invalidate(ctx context.Context, orderID string) error
}

type cachedStatus struct {
	Status lifecycle.Status `json:"status"`
}

// RedisStatusCache stores statuses as small JSON documents with a TTL.
type RedisStatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient returns a client for addr.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
}

// NewRedisStatusCache wraps rdb.
func NewRedisStatusCache(rdb *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{rdb: rdb, ttl: ttl}
}

func (c *RedisStatusCache) Get(ctx context.Context, orderID string) (lifecycle.Status, bool, error) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrderStatus, orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cached status of %s: %w", orderID, err)
	}

	var cs cachedStatus
	if err := json.Unmarshal(raw, &cs); err != nil || !cs.Status.Valid() {
		// unreadable entries count as a miss
		return "", false, nil
	}
	return cs.Status, true, nil
}

func (c *RedisStatusCache) Set(ctx context.Context, orderID string, status lifecycle.Status) error {
	b, err := json.Marshal(cachedStatus{Status: status})
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, fmt.Sprintf(keyOrderStatus, orderID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache status of %s: %w", orderID, err)
	}
	return nil
}

func (c *RedisStatusCache) Invalidate(ctx context.Context, orderID string) error {
	if err := c.rdb.Del(ctx, fmt.Sprintf(keyOrderStatus, orderID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached status of %s: %w", orderID, err)
	}
	return nil
}

// Nop never holds anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (lifecycle.Status, bool, error) { return "", false, nil }
func (Nop) Set(context.Context, string, lifecycle.Status) error         { return nil }
func (Nop) Invalidate(context.Context, string) error                    { return nil }
