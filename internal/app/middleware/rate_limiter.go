package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/code"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/response"
)

// TokenBucket is a simple token bucket limiter
type TokenBucket struct {
	rate       float64
	capacity   int
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a bucket refilled at rate tokens per second
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow consumes one token if available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

var (
	limiters   = make(map[string]*TokenBucket)
	limitersMu sync.RWMutex
)

func getLimiter(key string, rate float64, burst int) *TokenBucket {
	limitersMu.RLock()
	limiter, exists := limiters[key]
	limitersMu.RUnlock()
	if exists {
		return limiter
	}

	limitersMu.Lock()
	defer limitersMu.Unlock()
	if limiter, exists = limiters[key]; exists {
		return limiter
	}
	limiter = NewTokenBucket(rate, burst)
	limiters[key] = limiter
	return limiter
}

// IPRateLimiter limits requests per client IP
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return rateLimiter(rate, burst, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// PathRateLimiter limits requests per route path. Used on the endpoints
// that fan out to the monitoring cloud so a hot dashboard cannot exhaust
// the vendor quota.
func PathRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return rateLimiter(rate, burst, func(c *gin.Context) string {
		return c.FullPath()
	})
}

// CombinedRateLimiter limits per IP and path pair
func CombinedRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return rateLimiter(rate, burst, func(c *gin.Context) string {
		return c.ClientIP() + ":" + c.FullPath()
	})
}

func rateLimiter(rate float64, burst int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !getLimiter(keyFunc(c), rate, burst).Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "too many requests, slow down", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Idle buckets are dropped wholesale every hour. Dropping an active bucket
// only grants one fresh burst, so the imprecision is acceptable.
func init() {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			limitersMu.Lock()
			limiters = make(map[string]*TokenBucket)
			limitersMu.Unlock()
		}
	}()
}
