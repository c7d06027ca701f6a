package project

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

// DefaultColor is assigned to projects created without one.
const DefaultColor = "#4f46e5"

type UseCase struct {
	projects repository.ProjectRepository
	now      usecase.Clock
	logger   *zap.Logger
}

func New(projects repository.ProjectRepository, logger *zap.Logger, clock usecase.Clock) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = usecase.SystemClock
	}
	return &UseCase{
		projects: projects,
		now:      clock,
		logger:   logger,
	}
}

func (uc *UseCase) CreateProject(ctx context.Context, input domain.ProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Wrapf(domain.ErrInvalidPayload, "project name is required")
	}
	color := input.Color
	if color == "" {
		color = DefaultColor
	}
	now := uc.now()
	project := &domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: input.Description,
		Color:       color,
		Active:      true,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	uc.logger.Info("project created", zap.String("project_id", project.ID), zap.String("owner", project.CreatedBy))
	return project, nil
}

func (uc *UseCase) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return uc.projects.GetByID(ctx, id)
}

// ListProjects returns the owner's projects; activeOnly hides archived ones.
func (uc *UseCase) ListProjects(ctx context.Context, ownerID string, activeOnly bool) ([]*domain.Project, error) {
	return uc.projects.List(ctx, repository.ProjectFilter{OwnerID: ownerID, ActiveOnly: activeOnly})
}

func (uc *UseCase) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.Wrapf(domain.ErrInvalidPayload, "project name is required")
		}
		patch.Name = &name
	}
	project, err := uc.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(project)
	if now := uc.now(); now.After(project.UpdatedAt) {
		project.UpdatedAt = now
	}
	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (uc *UseCase) DeleteProject(ctx context.Context, id string) error {
	return uc.projects.Delete(ctx, id)
}

func (uc *UseCase) ArchiveProject(ctx context.Context, id string) (*domain.Project, error) {
	active := false
	return uc.UpdateProject(ctx, id, domain.ProjectPatch{Active: &active})
}

func (uc *UseCase) RestoreProject(ctx context.Context, id string) (*domain.Project, error) {
	active := true
	return uc.UpdateProject(ctx, id, domain.ProjectPatch{Active: &active})
}
