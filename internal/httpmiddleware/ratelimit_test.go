package httpmiddleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounters struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{counts: make(map[string]int64), expires: make(map[string]time.Duration)}
}

func (f *fakeCounters) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounters) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func TestLimiterAllowsUpToLimit(t *testing.T) {
	rdb := newFakeCounters()
	l := NewRedisLimiter(rdb, 3)

	for i := 0; i < 3; i++ {
		ok, err := l.allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	// A different IP has its own counter.
	ok, err = l.allow(context.Background(), "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiterSetsWindowOnFirstHit(t *testing.T) {
	rdb := newFakeCounters()
	l := NewRedisLimiter(rdb, 3)

	_, err := l.allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, rdb.expires[rateLimitPrefix+"1.2.3.4"])
}

func TestLimiterMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRedisLimiter(newFakeCounters(), 2).GinMiddleware())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "1.2.3.4:5555"
		r.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestLimiterFailsOpenOnRedisError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := newFakeCounters()
	rdb.err = errors.New("connection refused")

	r := gin.New()
	r.Use(NewRedisLimiter(rdb, 1).GinMiddleware())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "1.2.3.4:5555"
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
