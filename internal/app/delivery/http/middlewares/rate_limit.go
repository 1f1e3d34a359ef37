package middlewares

import (
	"net/http"
	"time"

	"screener-service/internal/app/services/shared/ratelimiter"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/utils"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// IPRateLimit is the global per address limit of a single instance.
func (m *Middlewares) IPRateLimit() func(next http.Handler) http.Handler {
	return httprate.Limit(
		m.InternalConfig.App.MaxRequests,
		time.Second,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeTooManyRequests(m.Log, w, 1)
		}),
	)
}

// LimitSessionCreation applies the session creation quota shared through the
// key-value store. Store failures let the request through.
func (m *Middlewares) LimitSessionCreation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.SessionLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		out, err := m.SessionLimiter.ApplyResourceLimiter(r.Context(), &ratelimiter.ApplyResourceLimiterInput{
			ResourceName:      clientIP(r),
			LimiterGroupName:  constvars.LimiterGroupSessionCreate,
			WindowDurationSec: m.InternalConfig.Session.CreateWindowInSeconds,
			MaxQuota:          m.InternalConfig.Session.CreateQuota,
		})
		if err != nil {
			m.Log.Warn("Session creation limiter unavailable",
				zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFromContext(r.Context())),
				zap.Error(err),
			)
			next.ServeHTTP(w, r)
			return
		}
		if !out.Allowed {
			writeTooManyRequests(m.Log, w, out.RetryAfterSecs)
			return
		}
		next.ServeHTTP(w, r)
	})
}
