package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/response"
)

// TokenBucket is a simple token bucket limiter
type TokenBucket struct {
	rate       float64 // tokens per second
	capacity   int
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a full bucket
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow takes one token if available
func (tb *TokenBucket) Allow() bool {
	return tb.allowAt(time.Now())
}

func (tb *TokenBucket) allowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.lastRefill = now
		tb.tokens += elapsed * tb.rate
		if tb.tokens > float64(tb.capacity) {
			tb.tokens = float64(tb.capacity)
		}
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

func (tb *TokenBucket) idleSince(now time.Time) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return now.Sub(tb.lastRefill)
}

// limiterStore keeps one bucket per key and drops buckets idle for longer than expiry
type limiterStore struct {
	mu      sync.Mutex
	buckets map[string]*TokenBucket
	expiry  time.Duration
	sweep   time.Time
}

func newLimiterStore(expiry time.Duration) *limiterStore {
	return &limiterStore{buckets: make(map[string]*TokenBucket), expiry: expiry, sweep: time.Now()}
}

func (s *limiterStore) get(key string, rate float64, burst int) *TokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.expiry > 0 && now.Sub(s.sweep) > s.expiry {
		for k, b := range s.buckets {
			if b.idleSince(now) > s.expiry {
				delete(s.buckets, k)
			}
		}
		s.sweep = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = NewTokenBucket(rate, burst)
		s.buckets[key] = b
	}
	return b
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// RateLimiterConfig configures RateLimiter
type RateLimiterConfig struct {
	Rate       float64                   // requests per second
	Burst      int                       // bucket size
	ExpiryTime time.Duration             // idle buckets are dropped after this
	LimitType  string                    // "ip", "path", "combined" or "user"
	KeyFunc    func(*gin.Context) string // overrides LimitType
}

// DefaultRateLimiterConfig allows 1 request per second with bursts of 5 per IP
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:       1,
	Burst:      5,
	ExpiryTime: time.Hour,
	LimitType:  "ip",
}

func limiterKey(c *gin.Context, cfg RateLimiterConfig) string {
	if cfg.KeyFunc != nil {
		return cfg.KeyFunc(c)
	}
	switch cfg.LimitType {
	case "path":
		return c.FullPath()
	case "combined":
		return c.ClientIP() + ":" + c.FullPath()
	case "user":
		if id := CurrentUserID(c); id != 0 {
			return "user:" + strconv.FormatUint(uint64(id), 10)
		}
	}
	return c.ClientIP()
}

// RateLimiter rejects requests with 429 once the bucket of their key is empty
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	cfg := DefaultRateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.LimitType == "" {
		cfg.LimitType = DefaultRateLimiterConfig.LimitType
	}
	if cfg.ExpiryTime <= 0 {
		cfg.ExpiryTime = DefaultRateLimiterConfig.ExpiryTime
	}
	store := newLimiterStore(cfg.ExpiryTime)

	return func(c *gin.Context) {
		limiter := store.get(limiterKey(c, cfg), cfg.Rate, cfg.Burst)
		if !limiter.Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "Zu viele Anfragen, bitte später erneut versuchen", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPRateLimiter limits per client IP
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: rate, Burst: burst, LimitType: "ip"})
}

// PathRateLimiter limits per route
func PathRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: rate, Burst: burst, LimitType: "path"})
}

// UserRateLimiter limits per authenticated user, per IP before authentication
func UserRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: rate, Burst: burst, LimitType: "user"})
}
