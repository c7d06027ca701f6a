package memory

import (
	"context"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type projectRepository struct {
	mu       sync.RWMutex
	order    []string
	projects map[string]*domain.Project
}

func NewProjectRepository() repository.ProjectRepository {
	return &projectRepository{projects: make(map[string]*domain.Project)}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	project, ok := r.projects[id]
	if !ok {
		return nil, domain.Wrapf(domain.ErrProjectNotFound, "project %s", id)
	}
	return project.Clone(), nil
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Project, 0, len(r.order))
	for _, id := range r.order {
		project := r.projects[id]
		if filter.OwnerID != "" && project.CreatedBy != filter.OwnerID {
			continue
		}
		if filter.ActiveOnly && !project.Active {
			continue
		}
		out = append(out, project.Clone())
	}
	return out, nil
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; ok {
		return domain.Wrapf(domain.ErrDuplicateID, "project %s", project.ID)
	}
	r.projects[project.ID] = project.Clone()
	r.order = append(r.order, project.ID)
	return nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; !ok {
		return domain.Wrapf(domain.ErrProjectNotFound, "project %s", project.ID)
	}
	r.projects[project.ID] = project.Clone()
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return domain.Wrapf(domain.ErrProjectNotFound, "project %s", id)
	}
	delete(r.projects, id)
	r.order = removeID(r.order, id)
	return nil
}
