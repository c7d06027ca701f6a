package domain

import "time"

// Achievement is a badge from the static catalog. UnlockedAt is nil until the
// user earns it.
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Points      int        `json:"points"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// Progress is a snapshot of one user's gamification state.
type Progress struct {
	UserID           string        `json:"user_id"`
	Points           int           `json:"points"`
	Level            int           `json:"level"`
	Achievements     []Achievement `json:"achievements"`
	StreakDays       int           `json:"streak_days"`
	LastActivityDate string        `json:"last_activity_date,omitempty"`
	TasksCreated     int           `json:"tasks_created"`
	TasksCompleted   int           `json:"tasks_completed"`
	DeadlinesMet     int           `json:"deadlines_met"`
	OrganizedTasks   int           `json:"organized_tasks"`
}

// LevelProgress describes the distance to the next level.
type LevelProgress struct {
	Current   int `json:"current"`
	Required  int `json:"required"`
	NextLevel int `json:"next_level"`
}
