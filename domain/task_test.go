package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_CloneIsDeep(t *testing.T) {
	due := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	orig := &Task{
		ID:       "t1",
		DueDate:  &due,
		Tags:     []string{"a"},
		Subtasks: []Subtask{{ID: "s1", Title: "one"}},
		Comments: []Comment{{ID: "c1", Body: "hi"}},
	}

	c := orig.Clone()
	c.Tags[0] = "changed"
	c.Subtasks[0].Title = "changed"
	c.Comments[0].Body = "changed"
	*c.DueDate = due.Add(time.Hour)

	assert.Equal(t, "a", orig.Tags[0])
	assert.Equal(t, "one", orig.Subtasks[0].Title)
	assert.Equal(t, "hi", orig.Comments[0].Body)
	assert.Equal(t, due, *orig.DueDate)
	assert.Nil(t, (*Task)(nil).Clone())
}

func TestTask_TouchNeverMovesBackwards(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	task := &Task{}

	task.Touch(now)
	assert.Equal(t, now, task.CreatedAt)
	assert.Equal(t, now, task.UpdatedAt)

	task.Touch(now.Add(-time.Minute))
	assert.Equal(t, now, task.UpdatedAt)

	task.Touch(now.Add(time.Minute))
	assert.Equal(t, now.Add(time.Minute), task.UpdatedAt)
	assert.Equal(t, now, task.CreatedAt)
}

func TestTask_OverdueAndRecipient(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	task := &Task{DueDate: &past, CreatedBy: "owner"}

	assert.True(t, task.IsOverdue(now))
	task.Completed = true
	assert.False(t, task.IsOverdue(now))

	assert.Equal(t, "owner", task.Recipient())
	task.AssigneeID = "helper"
	assert.Equal(t, "helper", task.Recipient())
}

func TestTaskPatch_Apply(t *testing.T) {
	due := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	task := &Task{Title: "old", Priority: PriorityLow, DueDate: &due, Tags: []string{"x"}}

	title := "new"
	urgent := PriorityUrgent
	done := true
	completed := TaskPatch{Title: &title, Priority: &urgent, Completed: &done, ClearDue: true, SetTags: true}.Apply(task)

	assert.True(t, completed)
	assert.Equal(t, "new", task.Title)
	assert.Equal(t, PriorityUrgent, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.Empty(t, task.Tags)

	assert.False(t, TaskPatch{Completed: &done}.Apply(task), "already complete")
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	p, err = ParsePriority(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("critical")
	assert.ErrorIs(t, err, ErrInvalidPriority)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestSortTasks_NilDueDatesLastInBothDirections(t *testing.T) {
	d1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	build := func() []*Task {
		return []*Task{{ID: "none"}, {ID: "late", DueDate: &d2}, {ID: "early", DueDate: &d1}}
	}
	ids := func(tasks []*Task) []string {
		out := make([]string, len(tasks))
		for i, task := range tasks {
			out[i] = task.ID
		}
		return out
	}

	asc := build()
	SortTasks(asc, TaskSort{Field: SortByDueDate})
	assert.Equal(t, []string{"early", "late", "none"}, ids(asc))

	desc := build()
	SortTasks(desc, TaskSort{Field: SortByDueDate, Desc: true})
	assert.Equal(t, []string{"late", "early", "none"}, ids(desc))
}

func TestSortTasks_PriorityAndTitle(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "beta", Priority: PriorityLow},
		{ID: "2", Title: "Alpha", Priority: PriorityUrgent},
		{ID: "3", Title: "gamma", Priority: PriorityMedium},
	}

	SortTasks(tasks, TaskSort{Field: SortByPriority, Desc: true})
	assert.Equal(t, "2", tasks[0].ID)
	assert.Equal(t, "1", tasks[2].ID)

	SortTasks(tasks, TaskSort{Field: SortByTitle})
	assert.Equal(t, "Alpha", tasks[0].Title)

	_, err := ParseSortField("colour")
	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestTaskQuery_MatchesAndPage(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	done := false
	task := &Task{
		Title:     "Quarterly report",
		CreatedBy: "u1",
		ProjectID: "p1",
		Tags:      []string{"work"},
		Priority:  PriorityHigh,
		DueDate:   &due,
	}

	assert.True(t, TaskQuery{}.Matches(task))
	assert.True(t, TaskQuery{OwnerID: "u1", ProjectID: "p1", Tag: "work", Priority: PriorityHigh, Completed: &done, Search: "REPORT"}.Matches(task))
	assert.False(t, TaskQuery{OwnerID: "u2"}.Matches(task))
	task.AssigneeID = "u2"
	assert.True(t, TaskQuery{OwnerID: "u2"}.Matches(task), "assignee sees the task")
	task.AssigneeID = ""
	assert.False(t, TaskQuery{Tag: "home"}.Matches(task))

	after := due.Add(time.Hour)
	assert.False(t, TaskQuery{DueFrom: &after}.Matches(task))
	assert.False(t, TaskQuery{DueTo: &after}.Matches(&Task{}), "no due date never matches a due window")

	tasks := []*Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	assert.Len(t, TaskQuery{Offset: 1, Limit: 1}.Page(tasks), 1)
	assert.Equal(t, "b", TaskQuery{Offset: 1, Limit: 1}.Page(tasks)[0].ID)
	assert.Nil(t, TaskQuery{Offset: 5}.Page(tasks))
}

func TestError_WrapfKeepsSentinelIdentity(t *testing.T) {
	err := Wrapf(ErrTaskNotFound, "task %s", "t1")

	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.False(t, errors.Is(err, ErrProjectNotFound))
	assert.True(t, IsDomainError(err, ErrCodeNotFound))
	assert.Contains(t, err.Error(), "task t1")
}

func TestError_CodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, ErrCodeConflict, CodeOf(fmt.Errorf("save: %w", ErrUserExists)))
	assert.False(t, IsDomainError(nil, ErrCodeInternal))
}

func TestPeriod_BucketKeysAndParsing(t *testing.T) {
	at := time.Date(2021, 1, 3, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "2021-01-03", PeriodDay.BucketKey(at))
	assert.Equal(t, "2020-W53", PeriodWeek.BucketKey(at))
	assert.Equal(t, "2021-01", PeriodMonth.BucketKey(at))

	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodDay, p)
	_, err = ParsePeriod("year")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	assert.Zero(t, Metrics{}.CompletionRate())
	assert.InDelta(t, 50.0, Metrics{TasksCreated: 4, TasksCompleted: 2}.CompletionRate(), 0.001)
}

func TestChangeKind_Action(t *testing.T) {
	assert.Equal(t, "deadline approaching", ChangeDeadlineApproaching.Action())
	assert.Equal(t, "subtask completed", ChangeSubtaskCompleted.Action())
	assert.Equal(t, "unknown action", ChangeKind("bogus").Action())
	assert.Len(t, ChangeKinds, 10)
}
