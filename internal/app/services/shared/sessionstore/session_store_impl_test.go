package sessionstore

import (
	"context"
	"testing"
	"time"

	"screener-service/internal/app/models"
	"screener-service/internal/app/services/shared/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	repo := redis.NewMemoryRepository()
	store := NewSessionStore(repo, zap.NewNop())

	created := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	session := &models.ScreenerSession{
		SessionID:    "abc",
		ScreenerType: "glp1",
		Responses:    map[string][]string{"gender": {"female"}, "medical_conditions": {"none"}},
		CreatedAt:    created,
		UpdatedAt:    created,
	}

	t.Run("Round trip", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, session, time.Hour))

		got, err := store.Find(ctx, "abc")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, session.Responses, got.Responses)
		assert.True(t, created.Equal(got.CreatedAt))
		assert.False(t, got.Submitted())
	})

	t.Run("Missing sessions are nil", func(t *testing.T) {
		got, err := store.Find(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Corrupt snapshots are reported", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, SessionKey("bad"), 42, time.Hour))
		_, err := store.Find(ctx, "bad")
		assert.Error(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "abc"))
		got, err := store.Find(ctx, "abc")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
