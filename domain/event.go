package domain

import "time"

// ChangeKind tags what happened to a task.
type ChangeKind string

const (
	ChangeCreated             ChangeKind = "created"
	ChangeUpdated             ChangeKind = "updated"
	ChangeCompleted           ChangeKind = "completed"
	ChangeDeleted             ChangeKind = "deleted"
	ChangeDeadlineApproaching ChangeKind = "deadline_approaching"
	ChangeAssigned            ChangeKind = "assigned"
	ChangeCommentAdded        ChangeKind = "comment_added"
	ChangeSubtaskAdded        ChangeKind = "subtask_added"
	ChangeSubtaskCompleted    ChangeKind = "subtask_completed"
	ChangeSubtaskDeleted      ChangeKind = "subtask_deleted"
)

// ChangeKinds lists every kind in declaration order.
var ChangeKinds = []ChangeKind{
	ChangeCreated,
	ChangeUpdated,
	ChangeCompleted,
	ChangeDeleted,
	ChangeDeadlineApproaching,
	ChangeAssigned,
	ChangeCommentAdded,
	ChangeSubtaskAdded,
	ChangeSubtaskCompleted,
	ChangeSubtaskDeleted,
}

// Action is the human-readable verb used in activity logs.
func (k ChangeKind) Action() string {
	switch k {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeCompleted:
		return "completed"
	case ChangeDeleted:
		return "deleted"
	case ChangeDeadlineApproaching:
		return "deadline approaching"
	case ChangeAssigned:
		return "assigned"
	case ChangeCommentAdded:
		return "comment added"
	case ChangeSubtaskAdded:
		return "subtask added"
	case ChangeSubtaskCompleted:
		return "subtask completed"
	case ChangeSubtaskDeleted:
		return "subtask deleted"
	default:
		return "unknown action"
	}
}

// ChangeEvent is dispatched to observers after a task mutation. Task is a
// private snapshot; observers may keep it.
type ChangeEvent struct {
	Task       *Task      `json:"task"`
	Kind       ChangeKind `json:"kind"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// UserID is the user whose aggregates the event feeds.
func (e ChangeEvent) UserID() string {
	if e.Task == nil {
		return ""
	}
	return e.Task.CreatedBy
}
