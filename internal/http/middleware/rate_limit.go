package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/http/response"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
	"golang.org/x/time/rate"
)

// Limiter decides whether another request for key fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Counter is a fixed-window counter such as cache.Store.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitConfig defines rate limiting parameters
type RateLimitConfig struct {
	Requests int           // Max requests per window
	Window   time.Duration // Time window duration
}

// CounterLimiter enforces a fixed window shared across instances.
type CounterLimiter struct {
	counter Counter
	config  RateLimitConfig
}

func NewCounterLimiter(counter Counter, config RateLimitConfig) *CounterLimiter {
	return &CounterLimiter{counter: counter, config: config}
}

func (l *CounterLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	n, err := l.counter.Incr(ctx, "ratelimit:"+key, l.config.Window)
	if err != nil {
		return true, err
	}
	return n <= int64(l.config.Requests), nil
}

type localClient struct {
	lim  *rate.Limiter
	seen time.Time
}

// LocalLimiter is a per-process token bucket per key.
type LocalLimiter struct {
	mu      sync.Mutex
	clients map[string]*localClient
	r       rate.Limit
	burst   int
}

func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	return &LocalLimiter{
		clients: make(map[string]*localClient),
		r:       rate.Every(config.Window / time.Duration(max(config.Requests, 1))),
		burst:   max(config.Requests, 1),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.clients[key]
	if !ok {
		c = &localClient{lim: rate.NewLimiter(l.r, l.burst)}
		l.clients[key] = c
	}
	c.seen = now
	return c.lim.AllowN(now, 1), nil
}

// Sweep drops keys idle for longer than idle.
func (l *LocalLimiter) Sweep(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, c := range l.clients {
		if time.Since(c.seen) > idle {
			delete(l.clients, k)
		}
	}
}

// RunSweeper sweeps every minute until ctx is done.
func (l *LocalLimiter) RunSweeper(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep(3 * time.Minute)
		}
	}
}

// RateLimit limits requests per client IP. Limiter failures fail open.
func RateLimit(l Limiter, out response.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasher := sha256.New()
			hasher.Write([]byte("ip:" + getClientIP(r)))
			key := fmt.Sprintf("%x", hasher.Sum(nil))

			ok, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.WarnContext(r.Context(), "Rate limiter unavailable", "error", err)
			}
			if !ok {
				out.RateLimit(w, r, "Too many requests. Try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers are
// not read here; behind a trusted proxy the ClientIP middleware has already
// rewritten RemoteAddr from them.
func getClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
