package middlewares

import (
	"screener-service/internal/app/config"
	"screener-service/internal/app/services/shared/ratelimiter"

	"go.uber.org/zap"
)

type Middlewares struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	// SessionLimiter enforces the shared session creation quota. Nil disables it.
	SessionLimiter *ratelimiter.ResourceLimiter
}

func NewMiddlewares(logger *zap.Logger, internalConfig *config.InternalConfig, sessionLimiter *ratelimiter.ResourceLimiter) *Middlewares {
	return &Middlewares{
		Log:            logger,
		InternalConfig: internalConfig,
		SessionLimiter: sessionLimiter,
	}
}
