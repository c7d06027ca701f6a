package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// SessionRepository holds live logins. Get reports expired sessions as
// domain.ErrSessionNotFound; Delete of an unknown id is not an error.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
