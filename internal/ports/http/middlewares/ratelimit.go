package middlewares

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ARUMANDESU/storefront-identity/pkg/httpx"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key. Limit keys by client IP,
// Allow takes any key the caller extracts from the request.
type RateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*keyLimiter
	limit      rate.Limit
	burst      int
	errhandler *httpx.ErrorHandler
}

// NewRateLimiter allows limit requests per second with bursts of burst per key.
// Idle entries are swept until ctx is done.
func NewRateLimiter(ctx context.Context, limit rate.Limit, burst int, errhandler *httpx.ErrorHandler) *RateLimiter {
	rl := &RateLimiter{
		limiters:   make(map[string]*keyLimiter),
		limit:      limit,
		burst:      burst,
		errhandler: errhandler,
	}
	go rl.sweep(ctx)
	return rl
}

// Allow spends a token of key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.allow(key, time.Now())
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	if rl.limit == rate.Inf {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		l = &keyLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, l := range rl.limiters {
				if now.Sub(l.lastSeen) > limiterIdleTTL {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r), time.Now()) {
			rl.errhandler.RateLimited(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
