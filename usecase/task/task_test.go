package task

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/eventbus"
	"github.com/fastygo/taskboard/repository/memory"
)

type eventLog struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (l *eventLog) HandleTaskChange(_ context.Context, ev domain.ChangeEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

func (l *eventLog) kinds() []domain.ChangeKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.ChangeKind, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (l *eventLog) reset() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}

type fixture struct {
	uc  *UseCase
	log *eventLog
	now time.Time
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{log: &eventLog{}, now: time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)}
	bus := eventbus.New(zaptest.NewLogger(t))
	bus.Subscribe(f.log)
	seq := 0
	f.uc = New(memory.NewTaskRepository(), bus, zaptest.NewLogger(t),
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	return f
}

func (f *fixture) create(t *testing.T, input domain.TaskInput) *domain.Task {
	t.Helper()
	if input.CreatedBy == "" {
		input.CreatedBy = "u1"
	}
	task, err := f.uc.CreateTask(context.Background(), input)
	require.NoError(t, err)
	return task
}

func TestTask_CreateDefaultsAndPublishes(t *testing.T) {
	f := newFixture(t)

	task := f.create(t, domain.TaskInput{Title: "A", Tags: []string{"work", " ", "work", "home"}})

	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, []string{"work", "home"}, task.Tags)
	assert.Equal(t, f.now, task.CreatedAt)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.Equal(t, []domain.ChangeKind{domain.ChangeCreated}, f.log.kinds())
	assert.Equal(t, f.now, f.log.events[0].OccurredAt)
}

func TestTask_CreateRejectsUnknownPriority(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateTask(context.Background(), domain.TaskInput{Title: "A", Priority: "critical"})

	assert.ErrorIs(t, err, domain.ErrInvalidPriority)
	assert.Empty(t, f.log.kinds())
}

func TestTask_ReadsReturnCopies(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, domain.TaskInput{Title: "A", Tags: []string{"x"}})

	created.Title = "mutated"
	created.Tags[0] = "y"

	fetched, err := f.uc.GetTask(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", fetched.Title)
	assert.Equal(t, []string{"x"}, fetched.Tags)
}

func TestTask_UpdatedAtIsMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, domain.TaskInput{Title: "A"})

	f.advance(time.Minute)
	title := "B"
	updated, err := f.uc.UpdateTask(ctx, task.ID, domain.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, f.now, updated.UpdatedAt)

	// clock steps backwards
	f.advance(-time.Hour)
	again, err := f.uc.AddSubtask(ctx, task.ID, "step")
	require.NoError(t, err)
	assert.Equal(t, updated.UpdatedAt, again.UpdatedAt)
	assert.False(t, again.UpdatedAt.Before(again.CreatedAt))
}

func TestTask_UpdateCompletingPublishesCompletedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, domain.TaskInput{Title: "A"})
	f.log.reset()

	done := true
	_, err := f.uc.UpdateTask(ctx, task.ID, domain.TaskPatch{Completed: &done})
	require.NoError(t, err)
	_, err = f.uc.UpdateTask(ctx, task.ID, domain.TaskPatch{Completed: &done})
	require.NoError(t, err)

	assert.Equal(t, []domain.ChangeKind{domain.ChangeUpdated, domain.ChangeCompleted, domain.ChangeUpdated}, f.log.kinds())
}

func TestTask_ToggleCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, domain.TaskInput{Title: "A"})
	f.log.reset()

	toggled, err := f.uc.ToggleCompletion(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = f.uc.ToggleCompletion(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	assert.Equal(t, []domain.ChangeKind{domain.ChangeUpdated, domain.ChangeCompleted, domain.ChangeUpdated}, f.log.kinds())
}

func TestTask_CompleteTaskIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, domain.TaskInput{Title: "A"})
	f.log.reset()

	first, err := f.uc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	second, err := f.uc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)

	assert.True(t, first.Completed)
	assert.True(t, second.Completed)
	assert.Equal(t, []domain.ChangeKind{domain.ChangeUpdated, domain.ChangeCompleted}, f.log.kinds())
}

func TestTask_DeleteMissingLeavesListUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, domain.TaskInput{Title: "A"})
	f.create(t, domain.TaskInput{Title: "B"})
	f.log.reset()

	err := f.uc.DeleteTask(ctx, "missing")

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	list, err := f.uc.ListTasks(ctx, domain.TaskQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Empty(t, f.log.kinds())
}

func TestTask_DeletePublishesLastSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, domain.TaskInput{Title: "A"})
	f.log.reset()

	require.NoError(t, f.uc.DeleteTask(ctx, task.ID))

	require.Len(t, f.log.events, 1)
	assert.Equal(t, domain.ChangeDeleted, f.log.events[0].Kind)
	assert.Equal(t, "A", f.log.events[0].Task.Title)
	_, err := f.uc.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTask_UnknownIDsReturnNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, domain.TaskInput{Title: "A"})
	f.log.reset()

	_, err := f.uc.UpdateTask(ctx, "missing", domain.TaskPatch{})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = f.uc.ToggleCompletion(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = f.uc.ToggleSubtask(ctx, task.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrSubtaskNotFound)
	_, err = f.uc.UpdateSubtask(ctx, task.ID, "missing", domain.SubtaskPatch{})
	assert.ErrorIs(t, err, domain.ErrSubtaskNotFound)
	_, err = f.uc.DeleteSubtask(ctx, task.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrSubtaskNotFound)

	assert.Empty(t, f.log.kinds())
}

func TestTask_SubtaskLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, domain.TaskInput{Title: "A"})
	f.log.reset()

	withSub, err := f.uc.AddSubtask(ctx, task.ID, "step one")
	require.NoError(t, err)
	require.Len(t, withSub.Subtasks, 1)
	subID := withSub.Subtasks[0].ID

	toggled, err := f.uc.ToggleSubtask(ctx, task.ID, subID)
	require.NoError(t, err)
	assert.True(t, toggled.Subtasks[0].Completed)

	_, err = f.uc.ToggleSubtask(ctx, task.ID, subID)
	require.NoError(t, err)

	done := true
	title := "step 1"
	patched, err := f.uc.UpdateSubtask(ctx, task.ID, subID, domain.SubtaskPatch{Title: &title, Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "step 1", patched.Subtasks[0].Title)

	removed, err := f.uc.DeleteSubtask(ctx, task.ID, subID)
	require.NoError(t, err)
	assert.Empty(t, removed.Subtasks)

	assert.Equal(t, []domain.ChangeKind{
		domain.ChangeUpdated, domain.ChangeSubtaskAdded,
		domain.ChangeUpdated, domain.ChangeSubtaskCompleted,
		domain.ChangeUpdated,
		domain.ChangeUpdated, domain.ChangeSubtaskCompleted,
		domain.ChangeUpdated, domain.ChangeSubtaskDeleted,
	}, f.log.kinds())
}

func TestTask_AssignAndComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, domain.TaskInput{Title: "A"})
	f.log.reset()

	assigned, err := f.uc.AssignTask(ctx, task.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", assigned.AssigneeID)

	commented, err := f.uc.AddComment(ctx, task.ID, "bob", "on it")
	require.NoError(t, err)
	require.Len(t, commented.Comments, 1)
	assert.Equal(t, "on it", commented.Comments[0].Body)
	assert.Equal(t, f.now, commented.Comments[0].CreatedAt)

	_, err = f.uc.AddComment(ctx, task.ID, "bob", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	assert.Equal(t, []domain.ChangeKind{
		domain.ChangeUpdated, domain.ChangeAssigned,
		domain.ChangeUpdated, domain.ChangeCommentAdded,
	}, f.log.kinds())
}

func TestTask_CheckDeadlineApproaching(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := func(d time.Duration) *time.Time { v := f.now.Add(d); return &v }

	f.create(t, domain.TaskInput{Title: "soon", DueDate: at(2 * time.Hour)})
	f.create(t, domain.TaskInput{Title: "edge", DueDate: at(24 * time.Hour)})
	f.create(t, domain.TaskInput{Title: "later", DueDate: at(48 * time.Hour)})
	f.create(t, domain.TaskInput{Title: "past", DueDate: at(-time.Hour)})
	f.create(t, domain.TaskInput{Title: "done", DueDate: at(time.Hour), Completed: true})
	f.create(t, domain.TaskInput{Title: "undated"})
	f.log.reset()

	count, err := f.uc.CheckDeadlineApproaching(ctx, 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	require.Len(t, f.log.events, 2)
	assert.Equal(t, domain.ChangeDeadlineApproaching, f.log.events[0].Kind)
	assert.Equal(t, "soon", f.log.events[0].Task.Title)
	assert.Equal(t, "edge", f.log.events[1].Task.Title)
}

func TestTask_AnnounceDeadlinesOncePerDueDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := f.now.Add(20 * time.Hour)
	task := f.create(t, domain.TaskInput{Title: "report", DueDate: &due})
	f.log.reset()

	for i := 0; i < 5; i++ {
		count, err := f.uc.AnnounceDeadlines(ctx, 24*time.Hour)
		require.NoError(t, err)
		if i == 0 {
			assert.Equal(t, 1, count)
		} else {
			assert.Zero(t, count)
		}
		f.advance(time.Minute)
	}
	assert.Equal(t, []domain.ChangeKind{domain.ChangeDeadlineApproaching}, f.log.kinds())

	moved := due.Add(time.Hour)
	_, err := f.uc.UpdateTask(ctx, task.ID, domain.TaskPatch{DueDate: &moved})
	require.NoError(t, err)
	f.log.reset()

	count, err := f.uc.AnnounceDeadlines(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "a new due date is announced again")

	count, err = f.uc.CheckDeadlineApproaching(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "the explicit check always publishes")
}

func TestTask_ListTasksIncludesAssigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := f.now.Add(-time.Hour)

	shared := f.create(t, domain.TaskInput{Title: "shared", CreatedBy: "alice", DueDate: &due})
	f.create(t, domain.TaskInput{Title: "private", CreatedBy: "alice"})
	_, err := f.uc.AssignTask(ctx, shared.ID, "bob")
	require.NoError(t, err)

	mine, err := f.uc.ListTasks(ctx, domain.TaskQuery{OwnerID: "bob"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, shared.ID, mine[0].ID)

	overdue, err := f.uc.OverdueTasks(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	all, err := f.uc.ListTasks(ctx, domain.TaskQuery{OwnerID: "alice"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTask_ListTasksQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := func(h int) *time.Time { v := f.now.Add(time.Duration(h) * time.Hour); return &v }

	f.create(t, domain.TaskInput{Title: "Write docs", Priority: domain.PriorityLow, DueDate: due(5), Tags: []string{"work"}, ProjectID: "p1"})
	f.create(t, domain.TaskInput{Title: "Buy milk", Priority: domain.PriorityUrgent, Tags: []string{"home"}})
	f.create(t, domain.TaskInput{Title: "Fix bug", Priority: domain.PriorityHigh, DueDate: due(1), Tags: []string{"work"}, ProjectID: "p1"})
	f.create(t, domain.TaskInput{Title: "Other user", CreatedBy: "u2"})

	byDue, err := f.uc.ListTasks(ctx, domain.TaskQuery{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fix bug", "Write docs", "Buy milk"}, titles(byDue))

	byPriority, err := f.uc.ListTasks(ctx, domain.TaskQuery{OwnerID: "u1", Sort: domain.TaskSort{Field: domain.SortByPriority, Desc: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk", "Fix bug", "Write docs"}, titles(byPriority))

	tagged, err := f.uc.ListTasks(ctx, domain.TaskQuery{Tag: "work", Search: "DOCS"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Write docs"}, titles(tagged))

	inProject, err := f.uc.ListTasks(ctx, domain.TaskQuery{ProjectID: "p1", Sort: domain.TaskSort{Field: domain.SortByTitle}, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Write docs"}, titles(inProject))
}

func TestTask_DueConvenienceReads(t *testing.T) {
	f := newFixture(t) // Wednesday 2024-05-08 10:00 UTC
	ctx := context.Background()
	on := func(days, hour int) *time.Time {
		v := time.Date(2024, 5, 8+days, hour, 0, 0, 0, time.UTC)
		return &v
	}

	f.create(t, domain.TaskInput{Title: "overdue", DueDate: on(-1, 9)})
	f.create(t, domain.TaskInput{Title: "today", DueDate: on(0, 18)})
	f.create(t, domain.TaskInput{Title: "sunday", DueDate: on(4, 12)})
	f.create(t, domain.TaskInput{Title: "next monday", DueDate: on(5, 0)})
	f.create(t, domain.TaskInput{Title: "monday", DueDate: on(-2, 8), Completed: true})

	overdue, err := f.uc.OverdueTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"overdue"}, titles(overdue))

	today, err := f.uc.TasksDueToday(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"today"}, titles(today))

	week, err := f.uc.TasksDueThisWeek(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"monday", "overdue", "today", "sunday"}, titles(week))
}

func TestTask_ConcurrentMutationsPublishInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, domain.TaskInput{Title: "A"})
	f.log.reset()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.ToggleCompletion(ctx, task.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Toggles alternate, so completed events must follow every other update.
	kinds := f.log.kinds()
	completed := 0
	for i, k := range kinds {
		if k == domain.ChangeCompleted {
			completed++
			require.Greater(t, i, 0)
			assert.Equal(t, domain.ChangeUpdated, kinds[i-1])
			assert.True(t, f.log.events[i].Task.Completed)
		}
	}
	assert.Equal(t, 10, completed)
	assert.Len(t, kinds, 30)
}

func titles(tasks []*domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}
