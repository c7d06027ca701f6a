package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// UserRepository stores accounts. Emails are unique and compared without
// regard to case; Create fails with domain.ErrUserExists on a duplicate.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}
