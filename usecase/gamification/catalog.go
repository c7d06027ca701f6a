package gamification

import "github.com/fastygo/taskboard/domain"

const (
	AchievementFirstTask       = "first-task"
	AchievementTaskMaster      = "task-master"
	AchievementStreak3         = "streak-3"
	AchievementStreak7         = "streak-7"
	AchievementOrganizationPro = "organization-pro"
	AchievementDeadlineCrusher = "deadline-crusher"
)

const (
	pointsTaskCreated      = 5
	pointsTaskCompleted    = 10
	pointsDeadlineMet      = 15
	pointsSubtaskAdded     = 2
	pointsSubtaskCompleted = 3
	pointsStreakBonus      = 5

	taskMasterCompletions = 10
	deadlineCrusherCount  = 5
	organizedTaskSubtasks = 3
	organizationProTasks  = 5
)

// levelThresholds[i] is the minimum points for level i+1.
var levelThresholds = []int{0, 100, 250, 500, 1000, 2000, 3500, 5000, 7500, 10000}

var catalog = []domain.Achievement{
	{ID: AchievementFirstTask, Name: "First Steps", Description: "Create your first task", Points: 10},
	{ID: AchievementTaskMaster, Name: "Task Master", Description: "Complete 10 tasks", Points: 50},
	{ID: AchievementStreak3, Name: "On Fire", Description: "Complete tasks for 3 days in a row", Points: 25},
	{ID: AchievementStreak7, Name: "Unstoppable", Description: "Complete tasks for 7 days in a row", Points: 75},
	{ID: AchievementOrganizationPro, Name: "Organization Pro", Description: "Create 5 tasks with subtasks", Points: 40},
	{ID: AchievementDeadlineCrusher, Name: "Deadline Crusher", Description: "Complete 5 tasks before their deadline", Points: 50},
}

func init() {
	for i := range catalog {
		catalog[i].Icon = "assets/badges/" + catalog[i].ID + ".svg"
	}
}

// Catalog returns a copy of every achievement, all locked.
func Catalog() []domain.Achievement {
	out := make([]domain.Achievement, len(catalog))
	copy(out, catalog)
	return out
}

func lookup(id string) (domain.Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Achievement{}, false
}

// LevelFor maps a point total to its level, starting at 1.
func LevelFor(points int) int {
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if points >= levelThresholds[i] {
			return i + 1
		}
	}
	return 1
}
