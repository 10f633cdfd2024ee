package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON encoded API payloads
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
}

// NewCache creates a new cache helper
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// Enabled reports whether lookups reach Redis
func (c *Cache) Enabled() bool {
	return c.client.Enabled()
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.client.Prefix(), key)
}

// Get retrieves a cached value. A miss returns (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes cached values and returns how many keys existed
func (c *Cache) Delete(ctx context.Context, keys ...string) (int64, error) {
	if !c.client.Enabled() || len(keys) == 0 {
		return 0, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	return c.client.Redis().Del(ctx, full...).Result()
}

// DeletePrefix removes every cached key starting with prefix
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	if !c.client.Enabled() {
		return 0, nil
	}

	var removed int64
	iter := c.client.Redis().Scan(ctx, 0, c.fullKey(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.client.Redis().Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache scan: %w", err)
	}
	return removed, nil
}

// GetOrSet returns the cached value of key or loads it with fetch and caches the result.
// A broken cache falls through to fetch; hit is true only for a cache hit.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (value T, hit bool, err error) {
	if found, getErr := c.Get(ctx, key, &value); getErr == nil && found {
		return value, true, nil
	}

	value, err = fetch(ctx)
	if err != nil {
		return value, false, err
	}

	_ = c.Set(ctx, key, value, ttl)
	return value, false, nil
}

// Predefined TTLs, aligned with the s-maxage of the matching Cache-Control header
const (
	TTLPrice     = 1 * time.Minute
	TTLSnapshot  = 5 * time.Minute
	TTLDashboard = 1 * time.Minute
)

// Key namespaces for read API payloads
const (
	KeyRecommendations = "recommendations"
	KeyIndexes         = "indexes"
	KeyPrices          = "prices"
	KeyPerformance     = "performance"
)

// RecommendationsKey is the cache key of the latest list of a period
func RecommendationsKey(period string) string {
	return fmt.Sprintf("%s:%s", KeyRecommendations, period)
}

// IndexMembersKey is the cache key of the latest membership of an index
func IndexMembersKey(indexCode string) string {
	return fmt.Sprintf("%s:%s:members", KeyIndexes, strings.ToUpper(indexCode))
}

// PriceKey is the cache key of a single ticker price
func PriceKey(ticker string) string {
	return fmt.Sprintf("%s:%s", KeyPrices, strings.ToUpper(ticker))
}

// PerformanceKey is the cache key of the latest performance payload
func PerformanceKey() string {
	return KeyPerformance + ":latest"
}

// SnapshotPrefixes lists the namespaces cleared when a new batch lands
func SnapshotPrefixes() []string {
	return []string{KeyRecommendations, KeyIndexes, KeyPrices, KeyPerformance}
}
