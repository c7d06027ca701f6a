package gamification

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase"
)

type userState struct {
	progress  domain.Progress
	organized map[string]struct{}
}

// UseCase folds task change events into per-user points, levels, streaks and
// achievements.
type UseCase struct {
	mu     sync.RWMutex
	users  map[string]*userState
	now    usecase.Clock
	logger *zap.Logger
}

func New(logger *zap.Logger, clock usecase.Clock) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = usecase.SystemClock
	}
	return &UseCase{
		users:  make(map[string]*userState),
		now:    clock,
		logger: logger,
	}
}

func (uc *UseCase) HandleTaskChange(ctx context.Context, ev domain.ChangeEvent) error {
	if ev.Task == nil {
		return domain.Wrapf(domain.ErrInvalidPayload, "change event without task")
	}
	// Deadline reminders come from the scheduler, not from the user, so they
	// neither score nor keep a streak alive.
	if ev.Kind == domain.ChangeDeadlineApproaching {
		return nil
	}
	userID := ev.UserID()
	at := ev.OccurredAt
	if at.IsZero() {
		at = uc.now()
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	state := uc.state(userID)
	switch ev.Kind {
	case domain.ChangeCreated:
		state.progress.TasksCreated++
		uc.addPoints(state, pointsTaskCreated)
		if state.progress.TasksCreated == 1 {
			uc.award(state, AchievementFirstTask, at)
		}
	case domain.ChangeCompleted:
		state.progress.TasksCompleted++
		uc.addPoints(state, pointsTaskCompleted)
		if ev.Task.DueDate != nil && ev.Task.DueDate.After(at) {
			state.progress.DeadlinesMet++
			uc.addPoints(state, pointsDeadlineMet)
			if state.progress.DeadlinesMet >= deadlineCrusherCount {
				uc.award(state, AchievementDeadlineCrusher, at)
			}
		}
		if state.progress.TasksCompleted >= taskMasterCompletions {
			uc.award(state, AchievementTaskMaster, at)
		}
	case domain.ChangeSubtaskAdded:
		uc.addPoints(state, pointsSubtaskAdded)
		if len(ev.Task.Subtasks) >= organizedTaskSubtasks {
			state.organized[ev.Task.ID] = struct{}{}
			state.progress.OrganizedTasks = len(state.organized)
			if state.progress.OrganizedTasks >= organizationProTasks {
				uc.award(state, AchievementOrganizationPro, at)
			}
		}
	case domain.ChangeSubtaskCompleted:
		uc.addPoints(state, pointsSubtaskCompleted)
	}

	uc.recordActivity(state, at)
	return nil
}

// state returns the user's aggregate, creating it on first use.
func (uc *UseCase) state(userID string) *userState {
	s, ok := uc.users[userID]
	if !ok {
		s = &userState{
			progress:  domain.Progress{UserID: userID, Level: 1},
			organized: make(map[string]struct{}),
		}
		uc.users[userID] = s
	}
	return s
}

func (uc *UseCase) addPoints(s *userState, points int) {
	s.progress.Points += points
	if level := LevelFor(s.progress.Points); level > s.progress.Level {
		s.progress.Level = level
		uc.logger.Info("user leveled up",
			zap.String("user_id", s.progress.UserID),
			zap.Int("level", level),
			zap.Int("points", s.progress.Points),
		)
	}
}

// award unlocks id once; catalog points are display only.
func (uc *UseCase) award(s *userState, id string, at time.Time) {
	if slices.ContainsFunc(s.progress.Achievements, func(a domain.Achievement) bool { return a.ID == id }) {
		return
	}
	achievement, ok := lookup(id)
	if !ok {
		return
	}
	unlocked := at
	achievement.UnlockedAt = &unlocked
	s.progress.Achievements = append(s.progress.Achievements, achievement)
	uc.logger.Info("achievement unlocked",
		zap.String("user_id", s.progress.UserID),
		zap.String("achievement", achievement.Name),
	)
}

// recordActivity advances the daily streak using UTC calendar days.
func (uc *UseCase) recordActivity(s *userState, at time.Time) {
	today := at.UTC().Format(time.DateOnly)
	if s.progress.LastActivityDate == today {
		return
	}
	yesterday := at.UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	if s.progress.LastActivityDate == yesterday {
		s.progress.StreakDays++
		switch s.progress.StreakDays {
		case 3:
			uc.award(s, AchievementStreak3, at)
		case 7:
			uc.award(s, AchievementStreak7, at)
		}
		uc.addPoints(s, pointsStreakBonus)
	} else {
		s.progress.StreakDays = 1
	}
	s.progress.LastActivityDate = today
}

// Progress returns a copy of the user's state; ok is false for unknown users.
func (uc *UseCase) Progress(userID string) (domain.Progress, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	s, ok := uc.users[userID]
	if !ok {
		return domain.Progress{UserID: userID, Level: 1}, false
	}
	p := s.progress
	p.Achievements = slices.Clone(s.progress.Achievements)
	return p, true
}

// Achievements merges the catalog with the user's unlocks, in catalog order.
func (uc *UseCase) Achievements(userID string) []domain.Achievement {
	all := Catalog()
	progress, _ := uc.Progress(userID)
	for i, a := range all {
		for _, unlocked := range progress.Achievements {
			if unlocked.ID == a.ID {
				all[i] = unlocked
			}
		}
	}
	return all
}

func (uc *UseCase) UnlockedAchievements(userID string) []domain.Achievement {
	progress, _ := uc.Progress(userID)
	return progress.Achievements
}

func (uc *UseCase) Streak(userID string) int {
	p, _ := uc.Progress(userID)
	return p.StreakDays
}

func (uc *UseCase) Level(userID string) int {
	p, _ := uc.Progress(userID)
	return p.Level
}

func (uc *UseCase) Points(userID string) int {
	p, _ := uc.Progress(userID)
	return p.Points
}

// NextLevel reports the user's points and the threshold of the next level.
// At the top level Required and NextLevel stay pinned to the last threshold.
func (uc *UseCase) NextLevel(userID string) domain.LevelProgress {
	p, ok := uc.Progress(userID)
	if !ok {
		return domain.LevelProgress{Current: 0, Required: levelThresholds[1], NextLevel: 2}
	}
	if p.Level >= len(levelThresholds) {
		return domain.LevelProgress{
			Current:   p.Points,
			Required:  levelThresholds[len(levelThresholds)-1],
			NextLevel: len(levelThresholds),
		}
	}
	return domain.LevelProgress{
		Current:   p.Points,
		Required:  levelThresholds[p.Level],
		NextLevel: p.Level + 1,
	}
}
