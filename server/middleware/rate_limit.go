package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/hrygo/nlcal/plugin/ai/cache"
	aierrors "github.com/hrygo/nlcal/server/internal/errors"
)

const (
	// DefaultLimiterKeys bounds how many clients are tracked at once.
	DefaultLimiterKeys = 10000
	// DefaultLimiterIdle is how long an unused client bucket is kept.
	DefaultLimiterIdle = 10 * time.Minute
)

// RateLimiter keeps one token bucket per key. Buckets idle for longer than
// the idle window are dropped, and so is the least recently seen bucket once
// the key budget is full; a dropped key starts again with a full burst.
type RateLimiter struct {
	mu     sync.Mutex
	limits *cache.LRU[*rate.Limiter]
	rate   rate.Limit
	burst  int
}

// NewRateLimiter creates a limiter allowing perSecond requests per key
// with the given burst. perSecond <= 0 disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return newRateLimiter(perSecond, burst, DefaultLimiterKeys, DefaultLimiterIdle)
}

func newRateLimiter(perSecond float64, burst, keys int, idle time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		limits: cache.New[*rate.Limiter](keys, idle),
		rate:   limit,
		burst:  burst,
	}
}

// getLimiter gets or creates the limiter for key and marks it as used.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limits.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
	}
	rl.limits.Set(key, limiter)
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware rejects requests over the limit, keyed by client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				return aierrors.RateLimitExceeded("too many requests")
			}
			return next(c)
		}
	}
}
