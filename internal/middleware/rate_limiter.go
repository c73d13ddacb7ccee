package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ──────────────────────────────────────────────────────

type window struct {
	count int
	end   time.Time
}

// IPLimiter counts requests per client IP in fixed windows.
type IPLimiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func NewIPLimiter(limit int, period time.Duration) *IPLimiter {
	return &IPLimiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow records one request for ip and reports whether it is within the
// limit, plus the end of the current window.
func (l *IPLimiter) Allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.windows[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

// Purge drops expired windows and returns how many were removed.
func (l *IPLimiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	purged := 0
	for ip, w := range l.windows {
		if now.After(w.end) {
			delete(l.windows, ip)
			purged++
		}
	}
	return purged
}

// RunPurger removes expired windows every interval until ctx is done.
func (l *IPLimiter) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Purge(); n > 0 {
				log.Debug().Int("purged", n).Msg("rate limiter windows purged")
			}
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (l *IPLimiter) Middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// ── Presets ───────────────────────────────────────────────────────────────────

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(l *IPLimiter) gin.HandlerFunc {
	return l.Middleware("too many login attempts, try again in a minute")
}

// RateLimiter is the general API limiter.
func RateLimiter(l *IPLimiter) gin.HandlerFunc {
	return l.Middleware("too many requests, try again shortly")
}
