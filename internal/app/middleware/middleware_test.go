package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTokenBucket(t *testing.T) {
	t.Run("burst then exhausted", func(t *testing.T) {
		tb := NewTokenBucket(1, 3)
		for i := 0; i < 3; i++ {
			assert.True(t, tb.Allow(), "request %d within burst", i)
		}
		assert.False(t, tb.Allow())
	})

	t.Run("refills over time", func(t *testing.T) {
		tb := NewTokenBucket(100, 1)
		require.True(t, tb.Allow())
		require.False(t, tb.Allow())
		time.Sleep(30 * time.Millisecond)
		assert.True(t, tb.Allow())
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		tb := NewTokenBucket(1000, 2)
		time.Sleep(20 * time.Millisecond)
		assert.True(t, tb.Allow())
		assert.True(t, tb.Allow())
		assert.False(t, tb.Allow())
	})
}

func TestIPRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/limited", IPRateLimiter(1, 2), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	do := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = ip + ":12345"
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"), "other clients keep their own bucket")
}

func TestCacheMiddleware(t *testing.T) {
	var hits int32
	r := gin.New()
	r.GET("/cached", Cache(time.Minute), func(c *gin.Context) {
		n := atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusOK, gin.H{"hits": n})
	})
	r.GET("/failing", Cache(time.Minute), func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream"})
	})
	r.POST("/cached", Cache(time.Minute), func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusOK, gin.H{"posted": true})
	})

	do := func(method, target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
		return w
	}

	t.Run("second read served from memory", func(t *testing.T) {
		PurgeCache()
		atomic.StoreInt32(&hits, 0)

		first := do(http.MethodGet, "/cached?limit=10")
		second := do(http.MethodGet, "/cached?limit=10")
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("query order does not split the cache", func(t *testing.T) {
		PurgeCache()
		atomic.StoreInt32(&hits, 0)

		do(http.MethodGet, "/cached?a=1&b=2")
		do(http.MethodGet, "/cached?b=2&a=1")
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("different queries cached separately", func(t *testing.T) {
		PurgeCache()
		atomic.StoreInt32(&hits, 0)

		do(http.MethodGet, "/cached?limit=10")
		do(http.MethodGet, "/cached?limit=20")
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		PurgeCache()
		atomic.StoreInt32(&hits, 0)

		do(http.MethodGet, "/failing")
		do(http.MethodGet, "/failing")
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})

	t.Run("writes bypass the cache", func(t *testing.T) {
		PurgeCache()
		atomic.StoreInt32(&hits, 0)

		do(http.MethodPost, "/cached")
		do(http.MethodPost, "/cached")
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	t.Run("assigns one when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "caller-id-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "caller-id-1", w.Header().Get(RequestIDHeader))
	})
}
