package domain

import (
	"slices"
	"strings"
	"time"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities from low (0) to urgent (3). Unknown values rank -1.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	default:
		return -1
	}
}

func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// ParsePriority validates raw input, defaulting to medium when empty.
func ParsePriority(raw string) (Priority, error) {
	if raw == "" {
		return PriorityMedium, nil
	}
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", Wrapf(ErrInvalidPriority, "priority %q", raw)
	}
	return p, nil
}

// Subtask is a checklist item owned by a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Comment is a note left on a task.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Task represents a user-owned activity item.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	ProjectID   string     `json:"project_id,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
	Comments    []Comment  `json:"comments,omitempty"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	CreatedBy   string     `json:"created_by"`
}

// Clone returns a deep copy so callers cannot reach into stored state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	c.Tags = slices.Clone(t.Tags)
	c.Subtasks = slices.Clone(t.Subtasks)
	c.Comments = slices.Clone(t.Comments)
	return &c
}

// Touch bumps UpdatedAt without ever moving it backwards.
func (t *Task) Touch(now time.Time) {
	if t == nil {
		return
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if now.Before(t.UpdatedAt) {
		return
	}
	t.UpdatedAt = now
}

func (t *Task) HasTag(tag string) bool {
	return t != nil && slices.Contains(t.Tags, tag)
}

func (t *Task) SubtaskIndex(id string) int {
	if t == nil {
		return -1
	}
	return slices.IndexFunc(t.Subtasks, func(s Subtask) bool { return s.ID == id })
}

// IsOverdue reports whether an incomplete task is past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return t != nil && !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// VisibleTo reports whether userID owns the task or is assigned to it.
func (t *Task) VisibleTo(userID string) bool {
	return t != nil && userID != "" && (t.CreatedBy == userID || t.AssigneeID == userID)
}

// Recipient is the user who should hear about this task: the assignee when
// one is set, otherwise the owner.
func (t *Task) Recipient() string {
	if t == nil {
		return ""
	}
	if t.AssigneeID != "" {
		return t.AssigneeID
	}
	return t.CreatedBy
}

// TaskInput carries the caller-supplied fields of a new task.
type TaskInput struct {
	Title       string
	Description string
	Completed   bool
	DueDate     *time.Time
	Priority    Priority
	ProjectID   string
	Tags        []string
	Subtasks    []Subtask
	CreatedBy   string
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *time.Time
	ClearDue    bool
	Priority    *Priority
	ProjectID   *string
	Tags        []string
	SetTags     bool
}

// Apply merges the patch into t and reports whether completion flipped from
// false to true.
func (p TaskPatch) Apply(t *Task) (completed bool) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		completed = !t.Completed && *p.Completed
		t.Completed = *p.Completed
	}
	switch {
	case p.ClearDue:
		t.DueDate = nil
	case p.DueDate != nil:
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.SetTags {
		t.Tags = slices.Clone(p.Tags)
	}
	return completed
}

// SubtaskPatch is a partial update of a subtask.
type SubtaskPatch struct {
	Title     *string
	Completed *bool
}
