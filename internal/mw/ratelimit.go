package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyedLimiter hands out one token bucket per key. Buckets idle for longer
// than the eviction window are dropped.
type KeyedLimiter struct {
	limiters *cache.Cache
	mu       sync.Mutex
	r        rate.Limit
	b        int
	idle     time.Duration
}

// NewKeyedLimiter creates a KeyedLimiter.
func NewKeyedLimiter(r rate.Limit, b int, idle time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: cache.New(idle, 2*idle),
		r:        r,
		b:        b,
		idle:     idle,
	}
}

// Limiter returns the bucket for key, creating it on first use.
func (k *KeyedLimiter) Limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if l, found := k.limiters.Get(key); found {
		// Touch so active clients keep their bucket.
		k.limiters.Set(key, l, k.idle)
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(k.r, k.b)
	k.limiters.Set(key, l, k.idle)
	return l
}

// Allow reports whether key may make one more request now.
func (k *KeyedLimiter) Allow(key string) bool {
	return k.Limiter(key).Allow()
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedLimiter(r, b, 10*time.Minute)
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
