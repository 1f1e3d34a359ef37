package ratelimiter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"screener-service/internal/app/contracts"
	"screener-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// ResourceLimiter is a fixed-window counter stored in the key-value store,
// so every instance sharing the store shares the quota.
type ResourceLimiter struct {
	redis contracts.RedisRepository
	log   *zap.Logger
	now   func() time.Time
}

func NewResourceLimiter(redis contracts.RedisRepository, log *zap.Logger) *ResourceLimiter {
	return &ResourceLimiter{redis: redis, log: log, now: time.Now}
}

type ApplyResourceLimiterInput struct {
	// ResourceName is the limited entity, e.g. a client address.
	ResourceName string
	// LimiterGroupName namespaces the key, e.g. session-create.
	LimiterGroupName  string
	WindowDurationSec int
	MaxQuota          int
}

type ApplyResourceLimiterOutput struct {
	Allowed        bool
	RetryAfterSecs int
}

// ApplyResourceLimiter counts one hit for the group and resource. Once the
// quota of the current window is spent it reports the seconds until the
// next window starts.
func (l *ResourceLimiter) ApplyResourceLimiter(ctx context.Context, in *ApplyResourceLimiterInput) (*ApplyResourceLimiterOutput, error) {
	if in == nil {
		return &ApplyResourceLimiterOutput{}, fmt.Errorf("nil limiter input")
	}

	resource := strings.ToLower(strings.TrimSpace(in.ResourceName))
	group := strings.ToUpper(strings.TrimSpace(in.LimiterGroupName))
	windowSec := in.WindowDurationSec
	if windowSec <= 0 {
		windowSec = 60
	}
	if in.MaxQuota <= 0 {
		return &ApplyResourceLimiterOutput{Allowed: true}, nil
	}
	if resource == "" || group == "" {
		return &ApplyResourceLimiterOutput{Allowed: false, RetryAfterSecs: windowSec}, nil
	}

	now := l.now().UTC()
	windowID := now.Unix() / int64(windowSec)
	key := fmt.Sprintf(constvars.RedisKeyRateLimitFormat, group, resource, windowID)

	count, err := l.redis.IncrementWithTTL(ctx, key, time.Duration(windowSec)*time.Second+time.Second)
	if err != nil {
		l.log.Error("ResourceLimiter.ApplyResourceLimiter increment failed",
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return &ApplyResourceLimiterOutput{Allowed: false}, err
	}

	if count > in.MaxQuota {
		nextWindowStart := (windowID + 1) * int64(windowSec)
		return &ApplyResourceLimiterOutput{
			Allowed:        false,
			RetryAfterSecs: int(nextWindowStart-now.Unix()) + 1,
		}, nil
	}
	return &ApplyResourceLimiterOutput{Allowed: true}, nil
}
