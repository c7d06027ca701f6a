package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskFilter narrows a listing at the storage layer. Finer filters, ordering
// and paging happen in the task use case.
type TaskFilter struct {
	// OwnerID keeps tasks created by or assigned to this user.
	OwnerID   string
	ProjectID string
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
