package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const defaultSessionTTL = time.Hour

type sessionRepository struct {
	client redislib.Cmdable
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionRepository keeps each session as a JSON value whose redis TTL
// matches the session expiry, so revoked and expired logins vanish on their own.
func NewSessionRepository(client redislib.Cmdable, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &sessionRepository{client: client, ttl: ttl, now: time.Now}
}

func sessionKey(id string) string {
	return "taskboard:session:" + id
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	switch {
	case errors.Is(err, redislib.Nil):
		return nil, domain.Wrapf(domain.ErrSessionNotFound, "session %s", id)
	case err != nil:
		return nil, fmt.Errorf("redis: get session: %w", err)
	}

	session := new(domain.Session)
	if err := json.Unmarshal(raw, session); err != nil {
		return nil, fmt.Errorf("redis: decode session %s: %w", id, err)
	}
	// Key expiry has second granularity; the stored deadline is authoritative.
	if session.IsExpired(r.now()) {
		return nil, domain.Wrapf(domain.ErrSessionNotFound, "session %s expired", id)
	}
	return session, nil
}

// Save fills in CreatedAt and ExpiresAt when the caller left them unset.
func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}

	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	remaining := session.Remaining(now)
	if remaining <= 0 {
		return domain.Wrapf(domain.ErrInvalidPayload, "session %s already expired", session.ID)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(session.ID), payload, remaining).Err()
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}
