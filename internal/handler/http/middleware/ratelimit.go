package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"news-api/internal/handler/http/respond"
	"news-api/internal/observability/metrics"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the per-client token bucket.
type RateLimiterConfig struct {
	// RequestsPerSecond is the sustained refill rate.
	RequestsPerSecond float64
	// Burst is the bucket size.
	Burst int
	// IdleTTL is how long an idle client's bucket is kept before it is swept.
	IdleTTL time.Duration
}

// DefaultRateLimiterConfig returns 20 req/s with a burst of 40.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 20,
		Burst:             40,
		IdleTTL:           10 * time.Minute,
	}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP with one token bucket per client.
type RateLimiter struct {
	cfg       RateLimiterConfig
	extractor IPExtractor
	now       func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

// NewRateLimiter creates a RateLimiter. A nil extractor falls back to RemoteAddrExtractor.
func NewRateLimiter(cfg RateLimiterConfig, extractor IPExtractor) *RateLimiter {
	if extractor == nil {
		extractor = &RemoteAddrExtractor{}
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimiterConfig().IdleTTL
	}
	return &RateLimiter{
		cfg:       cfg,
		extractor: extractor,
		now:       time.Now,
		clients:   make(map[string]*clientBucket),
		lastSweep: time.Now(),
	}
}

// Middleware rejects requests over the limit with 429 {"message":"Too Many Requests"}.
// Requests whose client address cannot be determined are let through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.extractor.ExtractIP(r)
		if err != nil {
			slog.Warn("rate limiter could not resolve client address",
				slog.String("remote_addr", r.RemoteAddr),
				slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}

		if !rl.allow(ip) {
			metrics.HTTPRateLimited.Inc()
			retryAfter := int(1 / rl.cfg.RequestsPerSecond)
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			respond.Message(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	if now.Sub(rl.lastSweep) >= rl.cfg.IdleTTL {
		rl.sweepLocked(now)
	}
	b, ok := rl.clients[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.clients[ip] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

// sweepLocked drops buckets idle for longer than IdleTTL. rl.mu must be held.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	for ip, b := range rl.clients {
		if now.Sub(b.lastSeen) > rl.cfg.IdleTTL {
			delete(rl.clients, ip)
		}
	}
	rl.lastSweep = now
}

// Clients returns the number of tracked client buckets.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
