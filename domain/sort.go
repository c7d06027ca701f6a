package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// SortField names one of the fixed task orderings.
type SortField string

const (
	SortByDueDate   SortField = "due_date"
	SortByPriority  SortField = "priority"
	SortByTitle     SortField = "title"
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByCompleted SortField = "completed"
)

// Comparator orders two tasks ascending.
type Comparator func(a, b *Task) int

var comparators = map[SortField]Comparator{
	SortByPriority: func(a, b *Task) int {
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	},
	SortByTitle: func(a, b *Task) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	},
	SortByCreatedAt: func(a, b *Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	SortByUpdatedAt: func(a, b *Task) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	},
	SortByCompleted: func(a, b *Task) int {
		switch {
		case a.Completed == b.Completed:
			return 0
		case a.Completed:
			return 1
		default:
			return -1
		}
	},
}

// ParseSortField validates a sort field name; empty selects due date.
func ParseSortField(raw string) (SortField, error) {
	if raw == "" {
		return SortByDueDate, nil
	}
	f := SortField(raw)
	if f == SortByDueDate {
		return f, nil
	}
	if _, ok := comparators[f]; !ok {
		return "", Wrapf(ErrInvalidSortField, "sort field %q", raw)
	}
	return f, nil
}

// TaskSort selects an ordering and direction.
type TaskSort struct {
	Field SortField
	Desc  bool
}

// SortTasks orders tasks in place. Tasks without a due date always sort
// last when ordering by due date, whichever the direction.
func SortTasks(tasks []*Task, s TaskSort) {
	if s.Field == "" || s.Field == SortByDueDate {
		slices.SortStableFunc(tasks, func(a, b *Task) int {
			return compareDue(a.DueDate, b.DueDate, s.Desc)
		})
		return
	}
	less, ok := comparators[s.Field]
	if !ok {
		return
	}
	slices.SortStableFunc(tasks, func(a, b *Task) int {
		if s.Desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

func compareDue(a, b *time.Time, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case desc:
		return b.Compare(*a)
	default:
		return a.Compare(*b)
	}
}
