package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/signalboard/pkg/redis"
)

// Limiter decides whether a caller may submit again
type Limiter interface {
	Allow(ctx context.Context, subject string) (bool, error)
}

// NewSubscribeLimiter returns the Redis sliding window limiter when Redis is on,
// otherwise a per-process token bucket with the same budget
func NewSubscribeLimiter(rl *redis.RateLimiter) Limiter {
	if rl != nil && rl.Enabled() {
		return &redisLimiter{rl: rl, cfg: redis.NewsletterRateLimit}
	}
	return newLocalLimiter(redis.NewsletterRateLimit.Limit, redis.NewsletterRateLimit.Window)
}

type redisLimiter struct {
	rl  *redis.RateLimiter
	cfg redis.RateLimitConfig
}

func (l *redisLimiter) Allow(ctx context.Context, subject string) (bool, error) {
	allowed, _, err := l.rl.Allow(ctx, l.cfg.ForSubject(subject))
	return allowed, err
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter keeps one token bucket per subject
type localLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

func newLocalLimiter(n int, window time.Duration) *localLimiter {
	return &localLimiter{
		entries: make(map[string]*localEntry),
		limit:   rate.Every(window / time.Duration(n)),
		burst:   n,
		idle:    10 * window,
		now:     time.Now,
	}
}

func (l *localLimiter) Allow(_ context.Context, subject string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[subject]
	if !ok {
		l.sweep(now)
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[subject] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// sweep drops idle subjects; called with mu held
func (l *localLimiter) sweep(now time.Time) {
	if len(l.entries) < 1024 {
		return
	}
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.entries, k)
		}
	}
}

// clientIP returns the first X-Forwarded-For hop, X-Real-IP, or the peer address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
