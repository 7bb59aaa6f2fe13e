package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the configuration for the rate limiter
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// clientLimiters keeps one token bucket per client IP.
type clientLimiters struct {
	config   RateLimiterConfig
	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdleTTL = 10 * time.Minute

// NewRateLimiterMiddleware limits each client IP to the configured rate.
func NewRateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	data := &clientLimiters{
		config:   config,
		limiters: make(map[string]*clientLimiter),
	}

	return func(c *gin.Context) {
		if !data.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

func (l *clientLimiters) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now

	for key, other := range l.limiters {
		if now.Sub(other.lastSeen) > limiterIdleTTL {
			delete(l.limiters, key)
		}
	}

	return entry.limiter.AllowN(now, 1)
}
