package domain

import (
	"fmt"
	"time"
)

// Period selects a metrics bucket granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates raw input, defaulting to day when empty.
func ParsePeriod(raw string) (Period, error) {
	if raw == "" {
		return PeriodDay, nil
	}
	p := Period(raw)
	if !p.Valid() {
		return "", Wrapf(ErrInvalidPeriod, "period %q", raw)
	}
	return p, nil
}

func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// BucketKey formats t as the identifier of the bucket containing it:
// 2006-01-02, 2006-W01 (ISO week) or 2006-01.
func (p Period) BucketKey(t time.Time) string {
	t = t.UTC()
	switch p {
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodMonth:
		return t.Format("2006-01")
	default:
		return t.Format(time.DateOnly)
	}
}

// Metrics are the counters of one bucket.
type Metrics struct {
	Key            string `json:"key"`
	TasksCreated   int    `json:"tasks_created"`
	TasksCompleted int    `json:"tasks_completed"`
	TasksDeleted   int    `json:"tasks_deleted"`
}

// CompletionRate is completed/created as a percentage, 0 with no creations.
func (m Metrics) CompletionRate() float64 {
	if m.TasksCreated == 0 {
		return 0
	}
	return float64(m.TasksCompleted) / float64(m.TasksCreated) * 100
}

// ActivityEntry is one line of the analytics activity log.
type ActivityEntry struct {
	TaskID    string     `json:"task_id"`
	TaskTitle string     `json:"task_title"`
	Kind      ChangeKind `json:"kind"`
	Action    string     `json:"action"`
	UserID    string     `json:"user_id"`
	Timestamp time.Time  `json:"timestamp"`
}
