package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signalboard/pkg/config"
)

func enabledClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := New(&config.Config{Redis: config.RedisConfig{
		Host:    mr.Host(),
		Port:    mr.Port(),
		Enabled: true,
		Prefix:  "sbtest",
	}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

type snapshot struct {
	Date  string   `json:"date"`
	Items []string `json:"items"`
}

func TestCache_GetOrSet(t *testing.T) {
	client, mr := enabledClient(t)
	cache := NewCache(client)
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) (*snapshot, error) {
		calls++
		return &snapshot{Date: "2026-10-16", Items: []string{}}, nil
	}

	v, hit, err := GetOrSet(ctx, cache, RecommendationsKey("daily"), TTLSnapshot, fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2026-10-16", v.Date)

	assert.True(t, mr.Exists("sbtest:cache:recommendations:daily"))
	assert.Equal(t, TTLSnapshot, mr.TTL("sbtest:cache:recommendations:daily"))

	v, hit, err = GetOrSet(ctx, cache, RecommendationsKey("daily"), TTLSnapshot, fetch)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)
	require.NotNil(t, v.Items)
	assert.Empty(t, v.Items)

	mr.FastForward(TTLSnapshot + time.Second)
	_, hit, err = GetOrSet(ctx, cache, RecommendationsKey("daily"), TTLSnapshot, fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestCache_GetOrSetFetchError(t *testing.T) {
	client, mr := enabledClient(t)
	cache := NewCache(client)

	_, _, err := GetOrSet(context.Background(), cache, PriceKey("AAPL"), TTLPrice, func(context.Context) (int, error) {
		return 0, errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("sbtest:cache:prices:AAPL"))
}

func TestCache_GetOrSetRedisDown(t *testing.T) {
	client, mr := enabledClient(t)
	cache := NewCache(client)
	mr.Close()

	v, hit, err := GetOrSet(context.Background(), cache, PerformanceKey(), TTLSnapshot, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, v)
}

func TestCache_DeletePrefix(t *testing.T) {
	client, mr := enabledClient(t)
	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, RecommendationsKey("daily"), 1, TTLSnapshot))
	require.NoError(t, cache.Set(ctx, RecommendationsKey("weekly"), 2, TTLSnapshot))
	require.NoError(t, cache.Set(ctx, PriceKey("AAPL"), 3, TTLPrice))
	require.NoError(t, mr.Set("sbtest:ratelimit:newsletter:10.0.0.1", "x"))

	n, err := cache.DeletePrefix(ctx, KeyRecommendations)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.False(t, mr.Exists("sbtest:cache:recommendations:daily"))
	assert.False(t, mr.Exists("sbtest:cache:recommendations:weekly"))
	assert.True(t, mr.Exists("sbtest:cache:prices:AAPL"))
	assert.True(t, mr.Exists("sbtest:ratelimit:newsletter:10.0.0.1"))

	n, err = cache.Delete(ctx, PriceKey("AAPL"), PriceKey("MSFT"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	client, _ := enabledClient(t)
	limiter := NewRateLimiter(client)
	ctx := context.Background()
	cfg := NewsletterRateLimit.ForSubject("10.0.0.1")

	for i := 0; i < cfg.Limit; i++ {
		allowed, remaining, err := limiter.Allow(ctx, cfg)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
		assert.Equal(t, cfg.Limit-i-1, remaining)
	}

	allowed, remaining, err := limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	allowed, _, err = limiter.Allow(ctx, NewsletterRateLimit.ForSubject("10.0.0.2"))
	require.NoError(t, err)
	assert.True(t, allowed)
}
