package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

func TestTaskRepository_StoresCopiesInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()

	first := &domain.Task{ID: "t1", Title: "one", CreatedBy: "u1", Tags: []string{"a"}}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, &domain.Task{ID: "t2", Title: "two", CreatedBy: "u2", AssigneeID: "u1", ProjectID: "p"}))
	require.NoError(t, repo.Create(ctx, &domain.Task{ID: "t3", Title: "three", CreatedBy: "u1"}))

	first.Tags[0] = "mutated"
	got, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Tags[0])

	all, err := repo.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	visible, err := repo.List(ctx, repository.TaskFilter{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Len(t, visible, 3, "owned plus assigned")

	owned, err := repo.List(ctx, repository.TaskFilter{OwnerID: "u2"})
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	inProject, err := repo.List(ctx, repository.TaskFilter{ProjectID: "p"})
	require.NoError(t, err)
	assert.Len(t, inProject, 1)

	err = repo.Create(ctx, &domain.Task{ID: "t1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestTaskRepository_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()

	assert.ErrorIs(t, repo.Update(ctx, &domain.Task{ID: "ghost"}), domain.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "ghost"), domain.ErrTaskNotFound)

	require.NoError(t, repo.Create(ctx, &domain.Task{ID: "t1", Title: "old"}))
	require.NoError(t, repo.Update(ctx, &domain.Task{ID: "t1", Title: "new"}))
	got, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)

	require.NoError(t, repo.Delete(ctx, "t1"))
	_, err = repo.GetByID(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUserRepository_EmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Email: "Ada@Example.com"}))
	got, err := repo.GetByEmail(ctx, " ada@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	err = repo.Create(ctx, &domain.User{ID: "u2", Email: "ada@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestSessionRepository_ExpiredSessionsAreDropped(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &sessionRepository{sessions: make(map[string]domain.Session), now: func() time.Time { return now }}

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "live", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "old", UserID: "u1", ExpiresAt: now.Add(-time.Hour)}))

	_, err := repo.Get(ctx, "live")
	require.NoError(t, err)
	_, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, "live"))
	_, err = repo.Get(ctx, "live")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
