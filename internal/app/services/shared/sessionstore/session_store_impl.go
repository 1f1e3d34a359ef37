package sessionstore

import (
	"context"
	"fmt"
	"time"

	"screener-service/internal/app/contracts"
	"screener-service/internal/app/models"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type sessionStore struct {
	redisRepo contracts.RedisRepository
	Log       *zap.Logger
}

// NewSessionStore keeps session snapshots in repo, which is redis or the
// in-process repository.
func NewSessionStore(repo contracts.RedisRepository, logger *zap.Logger) contracts.SessionStore {
	return &sessionStore{redisRepo: repo, Log: logger}
}

func SessionKey(sessionID string) string {
	return fmt.Sprintf(constvars.RedisKeySessionFormat, sessionID)
}

func (s *sessionStore) Save(ctx context.Context, session *models.ScreenerSession, exp time.Duration) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Debug("sessionStore.Save called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, session.SessionID),
	)

	if err := s.redisRepo.Set(ctx, SessionKey(session.SessionID), session, exp); err != nil {
		s.Log.Error("sessionStore.Save error calling redisRepo.Set",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *sessionStore) Find(ctx context.Context, sessionID string) (*models.ScreenerSession, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Debug("sessionStore.Find called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	raw, err := s.redisRepo.Get(ctx, SessionKey(sessionID))
	if err != nil {
		s.Log.Error("sessionStore.Find error calling redisRepo.Get",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var session models.ScreenerSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.Log.Error("sessionStore.Find stored session is not valid JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, sessionID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return &session, nil
}

func (s *sessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.redisRepo.Delete(ctx, SessionKey(sessionID))
}
