package task

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

// UseCase owns every task mutation. Each mutation is written to the
// repository and then published while holding mu, so observers see events
// in exactly the order mutations happened.
type UseCase struct {
	mu     sync.Mutex
	tasks  repository.TaskRepository
	events usecase.EventPublisher
	now    usecase.Clock
	newID  func() string
	logger *zap.Logger

	// announced maps task id to the due date already announced by
	// AnnounceDeadlines. Guarded by mu.
	announced map[string]time.Time
}

type Option func(*UseCase)

func WithClock(clock usecase.Clock) Option {
	return func(uc *UseCase) {
		if clock != nil {
			uc.now = clock
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(uc *UseCase) {
		if gen != nil {
			uc.newID = gen
		}
	}
}

func New(tasks repository.TaskRepository, events usecase.EventPublisher, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		tasks:  tasks,
		events: events,
		now:    usecase.SystemClock,
		newID:  uuid.NewString,
		logger: logger,

		announced: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	priority, err := domain.ParsePriority(string(input.Priority))
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.now()
	task := &domain.Task{
		ID:          uc.newID(),
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
		Priority:    priority,
		ProjectID:   input.ProjectID,
		Tags:        normalizeTags(input.Tags),
		CreatedBy:   input.CreatedBy,
	}
	if input.DueDate != nil {
		due := *input.DueDate
		task.DueDate = &due
	}
	for _, st := range input.Subtasks {
		if st.ID == "" {
			st.ID = uc.newID()
		}
		task.Subtasks = append(task.Subtasks, st)
	}

	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	uc.publish(ctx, task, now, domain.ChangeCreated)
	return task.Clone(), nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// ListTasks filters, sorts and pages tasks according to q.
func (uc *UseCase) ListTasks(ctx context.Context, q domain.TaskQuery) ([]*domain.Task, error) {
	all, err := uc.tasks.List(ctx, repository.TaskFilter{OwnerID: q.OwnerID, ProjectID: q.ProjectID})
	if err != nil {
		return nil, err
	}
	matched := make([]*domain.Task, 0, len(all))
	for _, t := range all {
		if q.Matches(t) {
			matched = append(matched, t)
		}
	}
	domain.SortTasks(matched, q.Sort)
	return q.Page(matched), nil
}

// OverdueTasks lists the owner's incomplete tasks whose due date has passed.
func (uc *UseCase) OverdueTasks(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	now := uc.now()
	all, err := uc.ListTasks(ctx, domain.TaskQuery{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	overdue := all[:0]
	for _, t := range all {
		if t.IsOverdue(now) {
			overdue = append(overdue, t)
		}
	}
	return overdue, nil
}

func (uc *UseCase) TasksDueToday(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	start := startOfDay(uc.now())
	return uc.dueBetween(ctx, ownerID, start, start.AddDate(0, 0, 1))
}

// TasksDueThisWeek covers Monday through Sunday of the current ISO week.
func (uc *UseCase) TasksDueThisWeek(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	start := startOfDay(uc.now())
	offset := (int(start.Weekday()) + 6) % 7
	start = start.AddDate(0, 0, -offset)
	return uc.dueBetween(ctx, ownerID, start, start.AddDate(0, 0, 7))
}

// dueBetween matches due dates in [from, to).
func (uc *UseCase) dueBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Task, error) {
	last := to.Add(-time.Nanosecond)
	return uc.ListTasks(ctx, domain.TaskQuery{OwnerID: ownerID, DueFrom: &from, DueTo: &last})
}

// UpdateTask merges patch into the task. Completing a task through an update
// also publishes a completed event.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Priority != nil {
		p, err := domain.ParsePriority(string(*patch.Priority))
		if err != nil {
			return nil, err
		}
		patch.Priority = &p
	}
	if patch.SetTags {
		patch.Tags = normalizeTags(patch.Tags)
	}
	return uc.mutate(ctx, id, func(t *domain.Task, _ time.Time) ([]domain.ChangeKind, error) {
		if patch.Apply(t) {
			return changes(domain.ChangeCompleted), nil
		}
		return changes(), nil
	})
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	uc.publish(ctx, task, uc.now(), domain.ChangeDeleted)
	return nil
}

// ToggleCompletion flips the completion flag. Only the transition to
// complete publishes a completed event.
func (uc *UseCase) ToggleCompletion(ctx context.Context, id string) (*domain.Task, error) {
	return uc.mutate(ctx, id, func(t *domain.Task, _ time.Time) ([]domain.ChangeKind, error) {
		t.Completed = !t.Completed
		if t.Completed {
			return changes(domain.ChangeCompleted), nil
		}
		return changes(), nil
	})
}

// CompleteTask marks the task complete. Completing an already complete task
// is a no-op and publishes nothing.
func (uc *UseCase) CompleteTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.mutate(ctx, id, func(t *domain.Task, _ time.Time) ([]domain.ChangeKind, error) {
		if t.Completed {
			return nil, nil
		}
		t.Completed = true
		return changes(domain.ChangeCompleted), nil
	})
}

func (uc *UseCase) AddSubtask(ctx context.Context, id, title string) (*domain.Task, error) {
	return uc.mutate(ctx, id, func(t *domain.Task, _ time.Time) ([]domain.ChangeKind, error) {
		t.Subtasks = append(t.Subtasks, domain.Subtask{ID: uc.newID(), Title: title})
		return changes(domain.ChangeSubtaskAdded), nil
	})
}

func (uc *UseCase) UpdateSubtask(ctx context.Context, id, subtaskID string, patch domain.SubtaskPatch) (*domain.Task, error) {
	return uc.mutate(ctx, id, func(t *domain.Task, _ time.Time) ([]domain.ChangeKind, error) {
		idx := t.SubtaskIndex(subtaskID)
		if idx < 0 {
			return nil, domain.Wrapf(domain.ErrSubtaskNotFound, "subtask %s on task %s", subtaskID, id)
		}
		st := &t.Subtasks[idx]
		if patch.Title != nil {
			st.Title = *patch.Title
		}
		completed := false
		if patch.Completed != nil {
			completed = !st.Completed && *patch.Completed
			st.Completed = *patch.Completed
		}
		if completed {
			return changes(domain.ChangeSubtaskCompleted), nil
		}
		return changes(), nil
	})
}

func (uc *UseCase) ToggleSubtask(ctx context.Context, id, subtaskID string) (*domain.Task, error) {
	return uc.mutate(ctx, id, func(t *domain.Task, _ time.Time) ([]domain.ChangeKind, error) {
		idx := t.SubtaskIndex(subtaskID)
		if idx < 0 {
			return nil, domain.Wrapf(domain.ErrSubtaskNotFound, "subtask %s on task %s", subtaskID, id)
		}
		t.Subtasks[idx].Completed = !t.Subtasks[idx].Completed
		if t.Subtasks[idx].Completed {
			return changes(domain.ChangeSubtaskCompleted), nil
		}
		return changes(), nil
	})
}

func (uc *UseCase) DeleteSubtask(ctx context.Context, id, subtaskID string) (*domain.Task, error) {
	return uc.mutate(ctx, id, func(t *domain.Task, _ time.Time) ([]domain.ChangeKind, error) {
		idx := t.SubtaskIndex(subtaskID)
		if idx < 0 {
			return nil, domain.Wrapf(domain.ErrSubtaskNotFound, "subtask %s on task %s", subtaskID, id)
		}
		t.Subtasks = append(t.Subtasks[:idx], t.Subtasks[idx+1:]...)
		return changes(domain.ChangeSubtaskDeleted), nil
	})
}

func (uc *UseCase) AssignTask(ctx context.Context, id, assigneeID string) (*domain.Task, error) {
	return uc.mutate(ctx, id, func(t *domain.Task, _ time.Time) ([]domain.ChangeKind, error) {
		t.AssigneeID = strings.TrimSpace(assigneeID)
		return changes(domain.ChangeAssigned), nil
	})
}

func (uc *UseCase) AddComment(ctx context.Context, id, authorID, body string) (*domain.Task, error) {
	if strings.TrimSpace(body) == "" {
		return nil, domain.Wrapf(domain.ErrInvalidPayload, "comment body is empty")
	}
	return uc.mutate(ctx, id, func(t *domain.Task, now time.Time) ([]domain.ChangeKind, error) {
		t.Comments = append(t.Comments, domain.Comment{
			ID:        uc.newID(),
			AuthorID:  authorID,
			Body:      body,
			CreatedAt: now,
		})
		return changes(domain.ChangeCommentAdded), nil
	})
}

// CheckDeadlineApproaching publishes one deadline event for every incomplete
// task due within [now, now+threshold] and returns how many matched.
func (uc *UseCase) CheckDeadlineApproaching(ctx context.Context, threshold time.Duration) (int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.now()
	due, err := uc.dueWithin(ctx, now, threshold)
	if err != nil {
		return 0, err
	}
	for _, t := range due {
		uc.publish(ctx, t, now, domain.ChangeDeadlineApproaching)
	}
	return len(due), nil
}

// AnnounceDeadlines is the periodic form of CheckDeadlineApproaching: a task
// is announced at most once per due date, so repeated scans stay quiet until
// the due date changes. It returns how many tasks were announced.
func (uc *UseCase) AnnounceDeadlines(ctx context.Context, threshold time.Duration) (int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.now()
	due, err := uc.dueWithin(ctx, now, threshold)
	if err != nil {
		return 0, err
	}

	current := make(map[string]time.Time, len(due))
	count := 0
	for _, t := range due {
		current[t.ID] = *t.DueDate
		if prev, ok := uc.announced[t.ID]; ok && prev.Equal(*t.DueDate) {
			continue
		}
		uc.publish(ctx, t, now, domain.ChangeDeadlineApproaching)
		count++
	}
	// Tasks that left the window (completed, deleted or past due) are forgotten.
	uc.announced = current
	return count, nil
}

func (uc *UseCase) dueWithin(ctx context.Context, now time.Time, threshold time.Duration) ([]*domain.Task, error) {
	all, err := uc.tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, err
	}
	limit := now.Add(threshold)
	due := all[:0]
	for _, t := range all {
		if t.Completed || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(now) || t.DueDate.After(limit) {
			continue
		}
		due = append(due, t)
	}
	return due, nil
}

// mutate loads the task, applies fn and persists the result. fn returns the
// kinds to publish; an empty, non-nil slice still publishes updated, while
// nil means nothing changed.
func (uc *UseCase) mutate(ctx context.Context, id string, fn func(t *domain.Task, now time.Time) ([]domain.ChangeKind, error)) (*domain.Task, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	kinds, err := fn(task, now)
	if err != nil {
		return nil, err
	}
	if kinds == nil {
		return task, nil
	}

	task.Touch(now)
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	uc.publish(ctx, task, now, kinds...)
	return task.Clone(), nil
}

// changes prefixes the generic updated event to the specific ones.
func changes(specific ...domain.ChangeKind) []domain.ChangeKind {
	return append([]domain.ChangeKind{domain.ChangeUpdated}, specific...)
}

func (uc *UseCase) publish(ctx context.Context, task *domain.Task, at time.Time, kinds ...domain.ChangeKind) {
	if uc.events == nil {
		return
	}
	for _, kind := range kinds {
		ev := domain.ChangeEvent{Task: task.Clone(), Kind: kind, OccurredAt: at}
		if err := uc.events.Publish(ctx, ev); err != nil {
			uc.logger.Error("task event delivery failed",
				zap.String("task_id", task.ID),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}
	}
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
