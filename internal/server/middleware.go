package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"trading-coach/internal/logging"
)

const limiterIdleTTL = 30 * time.Minute

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.LogRequest(s.logger, c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Writer.Status(), time.Since(start))
	}
}

// rateLimit throttles each client IP. Loopback clients are never limited.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if isLoopback(ip) || s.limiter.allow(ip, s.now()) {
			c.Next()
			return
		}
		s.logger.Warn().Str("client_ip", ip).Str("path", c.Request.URL.Path).Msg("Rate limit exceeded")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "Too many requests",
			"message": "Please try again later.",
		})
	}
}

func isLoopback(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter holds one token bucket per client. A bucket holds limit tokens and
// refills one every window/limit, so a client gets limit requests per window.
type ipLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	clients map[string]*limiterEntry
}

func newIPLimiter(window time.Duration, limit int) *ipLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &ipLimiter{
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		clients: make(map[string]*limiterEntry),
	}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	e, ok := l.clients[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[ip] = e
	}
	e.lastSeen = now
	l.mu.Unlock()
	return e.limiter.AllowN(now, 1)
}

// sweep forgets clients idle longer than limiterIdleTTL.
func (l *ipLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, e := range l.clients {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(l.clients, ip)
		}
	}
}
