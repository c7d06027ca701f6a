package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const taskColumns = `id, title, description, completed, due_date, priority, project_id, tags, subtasks, comments, assignee_id, created_by, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Wrapf(domain.ErrTaskNotFound, "task %s", id)
	}
	return task, err
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
	WHERE ($1 = '' OR created_by = $1 OR assignee_id = $1)
	  AND ($2 = '' OR project_id = $2)
	ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, filter.OwnerID, filter.ProjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	subtasks, comments, err := encodeTaskLists(task)
	if err != nil {
		return err
	}

	const query = `
	INSERT INTO tasks (id, title, description, completed, due_date, priority, project_id, tags, subtasks, comments, assignee_id, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Completed,
		nullTime(task.DueDate),
		string(task.Priority),
		task.ProjectID,
		nonNil(task.Tags),
		subtasks,
		comments,
		task.AssigneeID,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return mapDuplicateError(err, "task", task.ID)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	subtasks, comments, err := encodeTaskLists(task)
	if err != nil {
		return err
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		completed = $4,
		due_date = $5,
		priority = $6,
		project_id = $7,
		tags = $8,
		subtasks = $9,
		comments = $10,
		assignee_id = $11,
		updated_at = $12
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Completed,
		nullTime(task.DueDate),
		string(task.Priority),
		task.ProjectID,
		nonNil(task.Tags),
		subtasks,
		comments,
		task.AssigneeID,
		task.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Wrapf(domain.ErrTaskNotFound, "task %s", task.ID)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Wrapf(domain.ErrTaskNotFound, "task %s", id)
	}
	return nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	var (
		priority string
		subtasks []byte
		comments []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.DueDate,
		&priority,
		&task.ProjectID,
		&task.Tags,
		&subtasks,
		&comments,
		&task.AssigneeID,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	if len(task.Tags) == 0 {
		task.Tags = nil
	}
	var err error
	if task.Subtasks, err = unmarshalList[domain.Subtask](subtasks); err != nil {
		return nil, err
	}
	if task.Comments, err = unmarshalList[domain.Comment](comments); err != nil {
		return nil, err
	}
	return &task, nil
}

func encodeTaskLists(task *domain.Task) (subtasks, comments []byte, err error) {
	if subtasks, err = marshalList(task.Subtasks); err != nil {
		return nil, nil, err
	}
	if comments, err = marshalList(task.Comments); err != nil {
		return nil, nil, err
	}
	return subtasks, comments, nil
}
