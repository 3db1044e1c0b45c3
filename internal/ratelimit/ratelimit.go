// Package ratelimit throttles sensitive endpoints with a Redis-backed fixed
// window counter. Redis errors let the request through.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/config"
)

const keyPrefix = "mjnutrafit:ratelimit"

// KEYS[1] counter key; ARGV[1] window in ms. Returns {count, ttl_ms}.
var windowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return { count, ttl }
`)

// NewRedisClient connects to cfg.Addr. It returns nil when no address is
// configured or the server does not answer a ping, and callers then run
// without rate limiting.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

// Limiter allows Requests per Window for each client IP and route.
type Limiter struct {
	rdb      *redis.Client
	requests int
	window   time.Duration
	log      *logrus.Logger
}

// New returns a limiter. A nil rdb yields a limiter whose middleware is a no-op.
func New(rdb *redis.Client, cfg config.RateLimitConfig, log *logrus.Logger) *Limiter {
	if cfg.Requests <= 0 {
		cfg.Requests = 20
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &Limiter{rdb: rdb, requests: cfg.Requests, window: cfg.Window, log: log}
}

// Allow counts one hit for key and reports whether it is within the limit,
// the remaining budget and the time until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int, time.Duration, error) {
	vals, err := windowScript.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return true, l.requests, 0, err
	}
	if len(vals) != 2 {
		return true, l.requests, 0, nil
	}
	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond
	remaining := l.requests - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.requests, remaining, ttl, nil
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	if l == nil || l.rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		key := keyPrefix + ":" + c.FullPath() + ":" + c.ClientIP()
		allowed, remaining, reset, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			if l.log != nil {
				l.log.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
			}
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			secs := int((reset + time.Second - 1) / time.Second)
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
