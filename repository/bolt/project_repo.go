package bolt

import (
	"context"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type projectRepository struct {
	db *bolt.DB
}

func NewProjectRepository(db *bolt.DB) repository.ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var project *domain.Project
	err := r.db.View(func(tx *bolt.Tx) error {
		rec, err := getRecord[domain.Project](tx.Bucket([]byte(BucketProjects)), id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.Wrapf(domain.ErrProjectNotFound, "project %s", id)
		}
		project = &rec.Entity
		return nil
	})
	return project, err
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]*domain.Project, error) {
	var projects []*domain.Project
	err := r.db.View(func(tx *bolt.Tx) error {
		for _, rec := range scan[domain.Project](tx.Bucket([]byte(BucketProjects))) {
			project := rec.Entity
			if filter.OwnerID != "" && project.CreatedBy != filter.OwnerID {
				continue
			}
			if filter.ActiveOnly && !project.Active {
				continue
			}
			projects = append(projects, &project)
		}
		return nil
	})
	return projects, err
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketProjects))
		if b.Get([]byte(project.ID)) != nil {
			return domain.Wrapf(domain.ErrDuplicateID, "project %s", project.ID)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return putRecord(b, project.ID, record[domain.Project]{Seq: seq, Entity: *project})
	})
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketProjects))
		rec, err := getRecord[domain.Project](b, project.ID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.Wrapf(domain.ErrProjectNotFound, "project %s", project.ID)
		}
		rec.Entity = *project
		return putRecord(b, project.ID, *rec)
	})
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketProjects))
		if b.Get([]byte(id)) == nil {
			return domain.Wrapf(domain.ErrProjectNotFound, "project %s", id)
		}
		return b.Delete([]byte(id))
	})
}
