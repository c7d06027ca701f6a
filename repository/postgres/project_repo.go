package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const projectColumns = `id, name, description, color, active, created_by, created_at, updated_at`

type projectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	project, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Wrapf(domain.ErrProjectNotFound, "project %s", id)
	}
	return project, err
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
	WHERE ($1 = '' OR created_by = $1)
	  AND (NOT $2 OR active)
	ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, filter.OwnerID, filter.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO projects (id, name, description, color, active, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.Color,
		project.Active,
		project.CreatedBy,
		project.CreatedAt,
		project.UpdatedAt,
	)
	return mapDuplicateError(err, "project", project.ID)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE projects
	SET name = $2,
		description = $3,
		color = $4,
		active = $5,
		updated_at = $6
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.Color,
		project.Active,
		project.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Wrapf(domain.ErrProjectNotFound, "project %s", project.ID)
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Wrapf(domain.ErrProjectNotFound, "project %s", id)
	}
	return nil
}

func scanProject(row scanner) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Color,
		&project.Active,
		&project.CreatedBy,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}
