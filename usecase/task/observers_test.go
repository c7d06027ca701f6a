package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/eventbus"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/usecase/analytics"
	"github.com/fastygo/taskboard/usecase/gamification"
	"github.com/fastygo/taskboard/usecase/notification"
	"github.com/fastygo/taskboard/usecase/task"
)

func TestCreateTaskFeedsEveryObserver(t *testing.T) {
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := zaptest.NewLogger(t)

	bus := eventbus.New(logger)
	stats := analytics.New(logger, clock)
	game := gamification.New(logger, clock)
	inbox := notification.New(logger, clock)
	bus.Subscribe(stats)
	bus.Subscribe(game)
	bus.Subscribe(inbox)

	tasks := task.New(memory.NewTaskRepository(), bus, logger, task.WithClock(clock))
	ctx := context.Background()

	created, err := tasks.CreateTask(ctx, domain.TaskInput{Title: "A", Priority: domain.PriorityLow, CreatedBy: "u1"})
	require.NoError(t, err)

	stored, err := tasks.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Title)

	day, err := stats.Bucket("", domain.PeriodDay, now.Format(time.DateOnly))
	require.NoError(t, err)
	assert.Equal(t, 1, day.TasksCreated)

	assert.Equal(t, 5, game.Points("u1"))
	unlocked := game.UnlockedAchievements("u1")
	require.Len(t, unlocked, 1)
	assert.Equal(t, gamification.AchievementFirstTask, unlocked[0].ID)

	assert.Empty(t, inbox.List("u1"))
}

func TestCompleteBeforeDeadlineScoresThirtyPoints(t *testing.T) {
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := zaptest.NewLogger(t)

	bus := eventbus.New(logger)
	game := gamification.New(logger, clock)
	inbox := notification.New(logger, clock)
	stats := analytics.New(logger, clock)
	bus.Subscribe(game)
	bus.Subscribe(inbox)
	bus.Subscribe(stats)

	tasks := task.New(memory.NewTaskRepository(), bus, logger, task.WithClock(clock))
	ctx := context.Background()

	due := now.Add(24 * time.Hour)
	created, err := tasks.CreateTask(ctx, domain.TaskInput{Title: "Report", DueDate: &due, CreatedBy: "u1"})
	require.NoError(t, err)
	_, err = tasks.ToggleCompletion(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, 30, game.Points("u1"))
	assert.Equal(t, 1, game.Level("u1"))

	list := inbox.List("u1")
	require.Len(t, list, 1)
	assert.Equal(t, "Task Completed", list[0].Title)

	rate, err := stats.CompletionRate("u1", domain.PeriodDay, "")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, rate, 0.001)
}

func TestRepeatedDeadlineScansKeepInboxIntact(t *testing.T) {
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := zaptest.NewLogger(t)

	bus := eventbus.New(logger)
	inbox := notification.New(logger, clock)
	stats := analytics.New(logger, clock)
	bus.Subscribe(inbox)
	bus.Subscribe(stats)

	tasks := task.New(memory.NewTaskRepository(), bus, logger, task.WithClock(clock))
	ctx := context.Background()

	done, err := tasks.CreateTask(ctx, domain.TaskInput{Title: "Done", CreatedBy: "u1"})
	require.NoError(t, err)
	_, err = tasks.ToggleCompletion(ctx, done.ID)
	require.NoError(t, err)
	due := now.Add(20 * time.Hour)
	_, err = tasks.CreateTask(ctx, domain.TaskInput{Title: "Soon", DueDate: &due, CreatedBy: "u1"})
	require.NoError(t, err)

	for i := 0; i < 120; i++ {
		_, err := tasks.AnnounceDeadlines(ctx, 24*time.Hour)
		require.NoError(t, err)
		now = now.Add(time.Minute)
	}

	titles := map[string]int{}
	for _, n := range inbox.List("u1") {
		titles[n.Title]++
	}
	assert.Equal(t, map[string]int{"Task Completed": 1, "Deadline Approaching": 1}, titles)
	assert.Len(t, stats.RecentActivity("u1", 0), 5)
}
