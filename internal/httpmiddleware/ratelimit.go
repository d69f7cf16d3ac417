package httpmiddleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "portal:ratelimit:"

// counters is the slice of the redis API the limiter touches. Tests supply
// a fake; production passes the shared *redis.Client.
type counters interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
}

// RedisLimiter caps requests per client IP over a fixed one-minute window.
// Counters live in redis so every API instance shares the same budget.
type RedisLimiter struct {
	rdb    counters
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing perMinute requests per IP.
func NewRedisLimiter(rdb counters, perMinute int) *RedisLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RedisLimiter{rdb: rdb, limit: perMinute, window: time.Minute}
}

// GinMiddleware returns a gin handler enforcing per-IP limits. Redis
// trouble fails open so an outage cannot lock everyone out of login.
func (l *RedisLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		ok, err := l.allow(c.Request.Context(), ip)
		if err == nil && !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

func (l *RedisLimiter) allow(ctx context.Context, ip string) (bool, error) {
	key := rateLimitPrefix + ip
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(l.limit), nil
}
