package contracts

import (
	"context"
	"time"

	"screener-service/internal/app/models"
)

// SessionStore persists screening session snapshots between requests.
type SessionStore interface {
	Save(ctx context.Context, session *models.ScreenerSession, exp time.Duration) error
	// Find returns nil without error when the session does not exist.
	Find(ctx context.Context, sessionID string) (*models.ScreenerSession, error)
	Delete(ctx context.Context, sessionID string) error
}
