package middleware

import (
	"net/http"
	"sync"
	"time"

	"buzzhire/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry tracks request counts per IP within a sliding window.
type windowEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// limiter is a per-IP sliding-window counter shared by all limiter
// middleware instances created from it.
type limiter struct {
	entries map[string]*windowEntry
	mu      sync.Mutex
	limit   int
	window  time.Duration
}

func newLimiter(limit int, window time.Duration) *limiter {
	l := &limiter{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
	}
	go l.purgeLoop()
	return l
}

func (l *limiter) allow(ip string) bool {
	l.mu.Lock()
	entry, ok := l.entries[ip]
	if !ok {
		entry = &windowEntry{}
		l.entries[ip] = entry
	}
	l.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	if now.After(entry.windowEnd) {
		entry.count = 0
		entry.windowEnd = now.Add(l.window)
	}
	entry.count++
	return entry.count <= l.limit
}

// purgeLoop removes expired IPs so the map does not grow forever.
func (l *limiter) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		purged := 0
		l.mu.Lock()
		for ip, entry := range l.entries {
			entry.mu.Lock()
			if now.After(entry.windowEnd) {
				delete(l.entries, ip)
				purged++
			}
			entry.mu.Unlock()
		}
		remaining := len(l.entries)
		l.mu.Unlock()
		if purged > 0 {
			log.Debug().Int("purged", purged).Int("remaining", remaining).Msg("rate limiter map purged")
		}
	}
}

// RateLimiter returns a general-purpose per-IP limiter for the whole API.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newLimiter(limit, window)
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP. Stricter
// than the general limiter because each attempt costs a round trip to the
// identity provider.
func LoginRateLimiter() gin.HandlerFunc {
	l := newLimiter(20, time.Minute)
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many login attempts, try again in 1 minute"))
			return
		}
		c.Next()
	}
}
