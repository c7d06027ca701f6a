package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

func newTestRepo(t *testing.T) (*sessionRepository, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRepository(client, time.Hour).(*sessionRepository), srv
}

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	repo, srv := newTestRepo(t)
	now := time.Now()

	session := &domain.Session{ID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(30 * time.Minute)}
	require.NoError(t, repo.Save(ctx, session))
	assert.True(t, srv.Exists(sessionKey("s1")))
	assert.InDelta(t, (30 * time.Minute).Seconds(), srv.TTL(sessionKey("s1")).Seconds(), 5)

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_DefaultTTLAndExpiry(t *testing.T) {
	ctx := context.Background()
	repo, srv := newTestRepo(t)

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "s2", UserID: "u1"}))
	assert.InDelta(t, time.Hour.Seconds(), srv.TTL(sessionKey("s2")).Seconds(), 5)

	srv.FastForward(2 * time.Hour)
	_, err := repo.Get(ctx, "s2")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_RejectsAlreadyExpired(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	past := time.Now().Add(-time.Hour)

	err := repo.Save(ctx, &domain.Session{ID: "s3", UserID: "u1", CreatedAt: past.Add(-time.Hour), ExpiresAt: past})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
