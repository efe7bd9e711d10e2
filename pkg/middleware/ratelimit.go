package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/grigta/numbering/pkg/logger"
)

// Limiter decides whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type bucket struct {
	count     int
	lastReset time.Time
}

// MemoryLimiter is a per-process fixed window limiter. It is used when no
// Redis is configured.
type MemoryLimiter struct {
	mu        sync.Mutex
	requests  map[string]*bucket
	rate      int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter(rate int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		requests:  make(map[string]*bucket),
		rate:      rate,
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.requests[key]
	if !ok || now.Sub(b.lastReset) >= l.window {
		l.requests[key] = &bucket{count: 1, lastReset: now}
		return l.rate > 0, nil
	}

	if b.count >= l.rate {
		return false, nil
	}
	b.count++
	return true, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window*2 {
		return
	}
	for key, b := range l.requests {
		if now.Sub(b.lastReset) > l.window*2 {
			delete(l.requests, key)
		}
	}
	l.lastSweep = now
}

// RedisLimiter shares its fixed windows across every replica through
// INCR/EXPIRE on a per-window key.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	rate   int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, prefix string, rate int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		rate:   rate,
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) windowKey(key string) string {
	slot := l.now().UnixNano() / int64(l.window)
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.windowKey(key)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	return incr.Val() <= int64(l.rate), nil
}

// RateLimit rejects requests over the limit with 429. Limiter failures are
// logged and the request is let through.
func RateLimit(limiter Limiter, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("Rate limiter unavailable",
				logger.String("key", key),
				logger.Err(err),
			)
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"type":        "error",
				"status_code": http.StatusTooManyRequests,
				"message":     "Rate limit exceeded",
				"error":       "Rate limit exceeded",
				"result":      gin.H{"retry_after": window.Seconds()},
			})
			return
		}

		c.Next()
	}
}
