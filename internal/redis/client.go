package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	orderSequencePrefix = "order_seq:"
	cachePrefix         = "cache:"

	// FeaturedProductsKey caches the featured catalog served to the storefront.
	FeaturedProductsKey = "products:featured"

	// a day counter must outlive its day in every timezone
	orderSequenceTTL = 48 * time.Hour
)

var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Order numbering

// NextOrderSequence atomically claims the next ordinal for day's orders.
// The first caller of the day seeds the counter with seed(), the number of
// orders already stored for that day, so a cold redis resumes where the database is.
func (c *Client) NextOrderSequence(ctx context.Context, day time.Time, seed func(context.Context) (int64, error)) (int64, error) {
	key := orderSequencePrefix + day.Format("060102")

	exists, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check order sequence: %w", err)
	}
	if exists == 0 {
		count, err := seed(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to seed order sequence: %w", err)
		}
		// losing this race is fine, the winner seeded the same count
		if err := c.rdb.SetNX(ctx, key, count, orderSequenceTTL).Err(); err != nil {
			return 0, fmt.Errorf("failed to seed order sequence: %w", err)
		}
	}

	seq, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment order sequence: %w", err)
	}
	return seq, nil
}

// Cache

func (c *Client) SetCache(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	return c.rdb.Set(ctx, cachePrefix+key, jsonData, ttl).Err()
}

// GetCache decodes the cached value into dest, or returns ErrCacheMiss.
func (c *Client) GetCache(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache data: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return nil
}

func (c *Client) InvalidateCache(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = cachePrefix + key
	}
	return c.rdb.Del(ctx, prefixed...).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
