package admin

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"odontologia/metrics"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipLimiter is an in-memory token bucket per client IP. Buckets idle for
// longer than idleTTL are dropped.
type ipLimiter struct {
	name    string
	rps     float64
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

func newIPLimiter(name string, rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		name:     name,
		rps:      rps,
		burst:    burst,
		idleTTL:  limiterIdleTTL,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

func (l *ipLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.limiters[key] = e
	}
	e.seen = now
	return e.lim
}

// sweep must be called with mu held. A bucket idle for idleTTL has refilled
// completely, so dropping it changes nothing for that client.
func (l *ipLimiter) sweep(now time.Time) {
	for key, e := range l.limiters {
		if now.Sub(e.seen) >= l.idleTTL {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *ipLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rps <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		lim := l.get(ip)
		if !lim.Allow() {
			c.Header("Retry-After", "60")
			metrics.RateLimitRejected.WithLabelValues(l.name).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msgTooManyAttempts})
			return
		}
		c.Next()
	}
}
