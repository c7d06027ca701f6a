package domain

import (
	"strings"
	"time"
)

// TaskQuery filters, orders and pages a task listing. Zero values match
// everything.
//
// OwnerID selects the tasks a user can see: the ones they created and the
// ones assigned to them.
type TaskQuery struct {
	OwnerID   string
	ProjectID string
	Tag       string
	Priority  Priority
	Completed *bool
	DueFrom   *time.Time
	DueTo     *time.Time
	Search    string
	Sort      TaskSort
	Limit     int
	Offset    int
}

// Matches reports whether t passes every filter in q. Due-window filters
// exclude tasks without a due date.
func (q TaskQuery) Matches(t *Task) bool {
	if t == nil {
		return false
	}
	if q.OwnerID != "" && !t.VisibleTo(q.OwnerID) {
		return false
	}
	if q.ProjectID != "" && t.ProjectID != q.ProjectID {
		return false
	}
	if q.Tag != "" && !t.HasTag(q.Tag) {
		return false
	}
	if q.Priority != "" && t.Priority != q.Priority {
		return false
	}
	if q.Completed != nil && t.Completed != *q.Completed {
		return false
	}
	if q.DueFrom != nil || q.DueTo != nil {
		if t.DueDate == nil {
			return false
		}
		if q.DueFrom != nil && t.DueDate.Before(*q.DueFrom) {
			return false
		}
		if q.DueTo != nil && t.DueDate.After(*q.DueTo) {
			return false
		}
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	return true
}

// Page applies offset and limit to an already-sorted slice.
func (q TaskQuery) Page(tasks []*Task) []*Task {
	if q.Offset > 0 {
		if q.Offset >= len(tasks) {
			return nil
		}
		tasks = tasks[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(tasks) {
		tasks = tasks[:q.Limit]
	}
	return tasks
}
