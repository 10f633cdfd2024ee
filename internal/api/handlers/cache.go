package handlers

import (
	"context"
	"time"

	"github.com/wonny/signalboard/pkg/metrics"
	"github.com/wonny/signalboard/pkg/redis"
)

// readThrough serves a read-API payload from the response cache when Redis is enabled
type readThrough struct {
	cache   *redis.Cache
	metrics *metrics.Recorder
}

func cached[T any](ctx context.Context, rt readThrough, namespace, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if rt.cache == nil || !rt.cache.Enabled() {
		return fetch(ctx)
	}

	value, hit, err := redis.GetOrSet(ctx, rt.cache, key, ttl, fetch)
	if err == nil {
		rt.metrics.CacheLookup(namespace, hit)
	}
	return value, err
}
