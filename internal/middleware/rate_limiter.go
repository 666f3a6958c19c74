package middleware

import (
	"net/http"
	"sync"
	"time"

	"backoffice/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ─────────────────────────────────────────────────────

type window struct {
	count int
	ends  time.Time
}

// windowLimiter counts requests per client IP in fixed windows.
type windowLimiter struct {
	name   string
	limit  int
	period time.Duration

	mu      sync.Mutex
	clients map[string]*window
}

func newWindowLimiter(name string, limit int, period time.Duration) *windowLimiter {
	l := &windowLimiter{name: name, limit: limit, period: period, clients: make(map[string]*window)}
	go l.purgeLoop(purgeInterval)
	return l
}

// allow records one hit for ip and reports whether it is within the limit,
// plus when the current window ends.
func (l *windowLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[ip]
	if !ok || now.After(w.ends) {
		w = &window{ends: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.ends
}

func (l *windowLimiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	purged := 0
	for ip, w := range l.clients {
		if now.After(w.ends) {
			delete(l.clients, ip)
			purged++
		}
	}
	return purged
}

const purgeInterval = 5 * time.Minute

func (l *windowLimiter) purgeLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for now := range ticker.C {
		if n := l.purge(now); n > 0 {
			log.Debug().Str("limiter", l.name).Int("purged", n).Msg("rate limiter entries purged")
		}
	}
}

// ── Middleware ───────────────────────────────────────────────────────────────

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	l := newWindowLimiter("login", 20, time.Minute)
	return func(c *gin.Context) {
		if ok, _ := l.allow(c.ClientIP(), time.Now()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many login attempts, try again in a minute"))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general API limiter.
func RateLimiter(limit int, period time.Duration) gin.HandlerFunc {
	l := newWindowLimiter("api", limit, period)
	return func(c *gin.Context) {
		ok, ends := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", ends.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, slow down"))
			return
		}
		c.Next()
	}
}
