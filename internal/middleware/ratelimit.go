package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/glamsite/glamsite/internal/logger"
)

// defaultMaxClients caps how many client IPs the limiter tracks at once.
const defaultMaxClients = 10000

// RateLimiter throttles requests per client IP with a token bucket. It
// guards the admin login endpoint against password guessing.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*tokenBucket
	rate       float64 // tokens per second
	burst      float64
	maxClients int
	now        func() time.Time
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter with the given sustained rate
// (requests per second) and burst size.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients:    make(map[string]*tokenBucket),
		rate:       rate,
		burst:      float64(burst),
		maxClients: defaultMaxClients,
		now:        time.Now,
	}
}

// Handler returns HTTP middleware that enforces per-IP rate limiting.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		wait, ok := rl.take(ip)
		if !ok {
			logger.FromContext(r.Context()).Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// take spends one token for ip. When none is available it reports how long
// until the next token accrues.
func (rl *RateLimiter) take(ip string) (wait time.Duration, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.clients[ip]
	if !exists {
		if len(rl.clients) >= rl.maxClients {
			return rl.interval(), false
		}
		b = &tokenBucket{tokens: rl.burst, lastSeen: now}
		rl.clients[ip] = b
	}

	b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.lastSeen).Seconds()*rl.rate)
	b.lastSeen = now

	if b.tokens < 1 {
		return time.Duration((1 - b.tokens) / rl.rate * float64(time.Second)), false
	}
	b.tokens--
	return 0, true
}

func (rl *RateLimiter) interval() time.Duration {
	return time.Duration(float64(time.Second) / rl.rate)
}

// StartCleanup evicts clients idle for longer than maxIdle every interval
// until ctx is cancelled.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.evictIdle(maxIdle)
			}
		}
	}()
}

func (rl *RateLimiter) evictIdle(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-maxIdle)
	for ip, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// clientIP returns the host part of RemoteAddr. Forwarding headers are only
// reflected here when chi's RealIP runs first (server.trust_proxy).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
