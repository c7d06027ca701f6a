package bolt

import (
	"context"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	db *bolt.DB
}

// NewTaskRepository returns a BoltDB-backed TaskRepository. The database must
// have been opened with Buckets.
func NewTaskRepository(db *bolt.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		rec, err := getRecord[domain.Task](tx.Bucket([]byte(BucketTasks)), id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.Wrapf(domain.ErrTaskNotFound, "task %s", id)
		}
		task = &rec.Entity
		return nil
	})
	return task, err
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		for _, rec := range scan[domain.Task](tx.Bucket([]byte(BucketTasks))) {
			task := rec.Entity
			if filter.OwnerID != "" && !task.VisibleTo(filter.OwnerID) {
				continue
			}
			if filter.ProjectID != "" && task.ProjectID != filter.ProjectID {
				continue
			}
			tasks = append(tasks, &task)
		}
		return nil
	})
	return tasks, err
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTasks))
		if b.Get([]byte(task.ID)) != nil {
			return domain.Wrapf(domain.ErrDuplicateID, "task %s", task.ID)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return putRecord(b, task.ID, record[domain.Task]{Seq: seq, Entity: *task})
	})
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTasks))
		rec, err := getRecord[domain.Task](b, task.ID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.Wrapf(domain.ErrTaskNotFound, "task %s", task.ID)
		}
		rec.Entity = *task
		return putRecord(b, task.ID, *rec)
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTasks))
		if b.Get([]byte(id)) == nil {
			return domain.Wrapf(domain.ErrTaskNotFound, "task %s", id)
		}
		return b.Delete([]byte(id))
	})
}
