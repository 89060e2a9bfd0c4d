package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/statwatch/survmeter/internal/errors"
	"github.com/statwatch/survmeter/internal/monitoring"
)

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMin  int // per-IP requests per minute
	BurstMultiplier int // burst capacity multiplier
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerMin:  60,
		BurstMultiplier: 2,
	}
}

// Limiter provides in-memory per-IP rate limiting
type Limiter struct {
	config  Config
	metrics *monitoring.Metrics

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
}

// NewLimiter creates a per-IP rate limiter
func NewLimiter(config Config, metrics *monitoring.Metrics) *Limiter {
	l := &Limiter{
		config:   config,
		metrics:  metrics,
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
	}

	go l.evictStale()

	return l
}

// evictStale drops limiters that have been idle for a while so the map
// does not grow with every client ever seen.
func (l *Limiter) evictStale() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-30 * time.Minute)
		l.mu.Lock()
		for ip, seen := range l.lastSeen {
			if seen.Before(cutoff) {
				delete(l.limiters, ip)
				delete(l.lastSeen, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Allow reports whether a request from ip may proceed
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[ip]
	if !ok {
		perSecond := rate.Limit(float64(l.config.RequestsPerMin) / 60.0)
		lim = rate.NewLimiter(perSecond, l.config.RequestsPerMin*l.config.BurstMultiplier)
		l.limiters[ip] = lim
	}
	l.lastSeen[ip] = time.Now()
	l.mu.Unlock()

	return lim.Allow()
}

// Middleware creates a Gin middleware enforcing the per-IP limit
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		l.metrics.IncrementRateLimitIPBlock()

		appErr := errors.NewRateLimitError("60s")
		errors.LogError(c, appErr)
		c.Header("Retry-After", "60")
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	}
}
