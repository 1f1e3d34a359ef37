package middlewares

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"
	"screener-service/internal/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// idleLimiterTTL is how long a client limiter survives without requests.
	idleLimiterTTL  = 3 * time.Minute
	submitBlockTime = 30 * time.Second
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per client token bucket. A client that drains its bucket
// is blocked for blockTime.
type RateLimiter struct {
	log       *zap.Logger
	limiters  map[string]*clientLimiter
	blocked   map[string]time.Time
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	blockTime time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(log *zap.Logger, rps float64, burst int, blockTime time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		log:       log,
		limiters:  make(map[string]*clientLimiter),
		blocked:   make(map[string]time.Time),
		limit:     rate.Limit(rps),
		burst:     burst,
		blockTime: blockTime,
		now:       time.Now,
	}
}

// SubmitRateLimiter builds the limiter guarding submissions from the app config.
func (m *Middlewares) SubmitRateLimiter() *RateLimiter {
	return NewRateLimiter(m.Log, m.InternalConfig.App.SubmitRequestsPerSecond, m.InternalConfig.App.SubmitBurst, submitBlockTime)
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		now := rl.now()

		rl.mu.Lock()
		rl.sweep(now)

		if blockedUntil, found := rl.blocked[ip]; found {
			if now.Before(blockedUntil) {
				rl.mu.Unlock()
				rl.reject(w, blockedUntil.Sub(now))
				return
			}
			delete(rl.blocked, ip)
		}

		cl, exists := rl.limiters[ip]
		if !exists {
			cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
			rl.limiters[ip] = cl
		}
		cl.lastSeen = now

		if !cl.limiter.AllowN(now, 1) {
			rl.blocked[ip] = now.Add(rl.blockTime)
			rl.mu.Unlock()
			rl.reject(w, rl.blockTime)
			return
		}
		rl.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// sweep drops idle limiters at most once per idleLimiterTTL. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < idleLimiterTTL {
		return
	}
	rl.lastSweep = now
	for ip, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) > idleLimiterTTL {
			delete(rl.limiters, ip)
		}
	}
	for ip, until := range rl.blocked {
		if !now.Before(until) {
			delete(rl.blocked, ip)
		}
	}
}

func (rl *RateLimiter) reject(w http.ResponseWriter, retryAfter time.Duration) {
	writeTooManyRequests(rl.log, w, int(math.Ceil(retryAfter.Seconds())))
}

func writeTooManyRequests(log *zap.Logger, w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs < 1 {
		retryAfterSecs = 1
	}
	w.Header().Set(constvars.HeaderRetryAfter, strconv.Itoa(retryAfterSecs))
	utils.BuildErrorResponse(log, w, exceptions.ErrTooManyRequests(nil))
}
