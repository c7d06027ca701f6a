package memory

import (
	"context"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]*domain.Task
}

// NewTaskRepository returns an in-process TaskRepository that keeps tasks in
// insertion order.
func NewTaskRepository() repository.TaskRepository {
	return &taskRepository{tasks: make(map[string]*domain.Task)}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.Wrapf(domain.ErrTaskNotFound, "task %s", id)
	}
	return task.Clone(), nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Task, 0, len(r.order))
	for _, id := range r.order {
		task := r.tasks[id]
		if filter.OwnerID != "" && !task.VisibleTo(filter.OwnerID) {
			continue
		}
		if filter.ProjectID != "" && task.ProjectID != filter.ProjectID {
			continue
		}
		out = append(out, task.Clone())
	}
	return out, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; ok {
		return domain.Wrapf(domain.ErrDuplicateID, "task %s", task.ID)
	}
	r.tasks[task.ID] = task.Clone()
	r.order = append(r.order, task.ID)
	return nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.Wrapf(domain.ErrTaskNotFound, "task %s", task.ID)
	}
	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.Wrapf(domain.ErrTaskNotFound, "task %s", id)
	}
	delete(r.tasks, id)
	r.order = removeID(r.order, id)
	return nil
}
