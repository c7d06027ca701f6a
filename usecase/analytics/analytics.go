package analytics

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase"
)

// DefaultActivityLimit is used when RecentActivity is asked for n <= 0.
const DefaultActivityLimit = 50

// DefaultProductivityDays is used when ProductivityScore is asked for days <= 0.
const DefaultProductivityDays = 7

// MaxProductivityDays bounds the productivity window, which is scanned while
// holding the read lock that event delivery waits on.
const MaxProductivityDays = 366

var periods = []domain.Period{domain.PeriodDay, domain.PeriodWeek, domain.PeriodMonth}

// buckets holds metrics per period, keyed by bucket key.
type buckets map[domain.Period]map[string]*domain.Metrics

func newBuckets() buckets {
	b := make(buckets, len(periods))
	for _, p := range periods {
		b[p] = make(map[string]*domain.Metrics)
	}
	return b
}

func (b buckets) bump(at time.Time, fn func(m *domain.Metrics)) {
	for _, p := range periods {
		key := p.BucketKey(at)
		m, ok := b[p][key]
		if !ok {
			m = &domain.Metrics{Key: key}
			b[p][key] = m
		}
		fn(m)
	}
}

// UseCase aggregates task events into day, week and month metrics, both
// across all users (scope "") and per user, plus an activity log.
type UseCase struct {
	mu       sync.RWMutex
	scopes   map[string]buckets
	activity []domain.ActivityEntry
	now      usecase.Clock
	logger   *zap.Logger
}

func New(logger *zap.Logger, clock usecase.Clock) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = usecase.SystemClock
	}
	return &UseCase{
		scopes: map[string]buckets{"": newBuckets()},
		now:    clock,
		logger: logger,
	}
}

func (uc *UseCase) HandleTaskChange(ctx context.Context, ev domain.ChangeEvent) error {
	if ev.Task == nil {
		return domain.Wrapf(domain.ErrInvalidPayload, "change event without task")
	}
	at := ev.OccurredAt
	if at.IsZero() {
		at = uc.now()
	}
	userID := ev.UserID()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.activity = append(uc.activity, domain.ActivityEntry{
		TaskID:    ev.Task.ID,
		TaskTitle: ev.Task.Title,
		Kind:      ev.Kind,
		Action:    ev.Kind.Action(),
		UserID:    userID,
		Timestamp: at,
	})

	var fn func(m *domain.Metrics)
	switch ev.Kind {
	case domain.ChangeCreated:
		fn = func(m *domain.Metrics) { m.TasksCreated++ }
	case domain.ChangeCompleted:
		fn = func(m *domain.Metrics) { m.TasksCompleted++ }
	case domain.ChangeDeleted:
		fn = func(m *domain.Metrics) { m.TasksDeleted++ }
	default:
		return nil
	}

	uc.scopes[""].bump(at, fn)
	if userID != "" {
		uc.scope(userID).bump(at, fn)
	}
	return nil
}

func (uc *UseCase) scope(userID string) buckets {
	b, ok := uc.scopes[userID]
	if !ok {
		b = newBuckets()
		uc.scopes[userID] = b
	}
	return b
}

// RecentActivity returns up to limit entries, newest first. An empty userID
// covers every user.
func (uc *UseCase) RecentActivity(userID string, limit int) []domain.ActivityEntry {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	out := make([]domain.ActivityEntry, 0, min(limit, len(uc.activity)))
	for i := len(uc.activity) - 1; i >= 0 && len(out) < limit; i-- {
		entry := uc.activity[i]
		if userID != "" && entry.UserID != userID {
			continue
		}
		out = append(out, entry)
	}
	slices.SortStableFunc(out, func(a, b domain.ActivityEntry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// Bucket returns one bucket's metrics; an unseen bucket is all zeros.
func (uc *UseCase) Bucket(userID string, period domain.Period, key string) (domain.Metrics, error) {
	if !period.Valid() {
		return domain.Metrics{}, domain.Wrapf(domain.ErrInvalidPeriod, "period %q", period)
	}
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if b, ok := uc.scopes[userID]; ok {
		if m, ok := b[period][key]; ok {
			return *m, nil
		}
	}
	return domain.Metrics{Key: key}, nil
}

// Range returns the recorded buckets whose keys fall in [from, to], ascending.
func (uc *UseCase) Range(userID string, period domain.Period, from, to string) ([]domain.Metrics, error) {
	all, err := uc.collect(userID, period, func(key string) bool { return key >= from && key <= to })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(all, func(a, b domain.Metrics) int { return cmp.Compare(a.Key, b.Key) })
	return all, nil
}

// All returns every recorded bucket for the period, newest first.
func (uc *UseCase) All(userID string, period domain.Period) ([]domain.Metrics, error) {
	all, err := uc.collect(userID, period, func(string) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(all, func(a, b domain.Metrics) int { return cmp.Compare(b.Key, a.Key) })
	return all, nil
}

func (uc *UseCase) collect(userID string, period domain.Period, keep func(key string) bool) ([]domain.Metrics, error) {
	if !period.Valid() {
		return nil, domain.Wrapf(domain.ErrInvalidPeriod, "period %q", period)
	}
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	b, ok := uc.scopes[userID]
	if !ok {
		return []domain.Metrics{}, nil
	}
	out := make([]domain.Metrics, 0, len(b[period]))
	for key, m := range b[period] {
		if keep(key) {
			out = append(out, *m)
		}
	}
	return out, nil
}

// CompletionRate is completed/created for one bucket as a percentage; an
// empty key selects the bucket containing now.
func (uc *UseCase) CompletionRate(userID string, period domain.Period, key string) (float64, error) {
	if key == "" {
		key = period.BucketKey(uc.now())
	}
	m, err := uc.Bucket(userID, period, key)
	if err != nil {
		return 0, err
	}
	return m.CompletionRate(), nil
}

// ClampProductivityDays maps a requested window onto
// [1, MaxProductivityDays]; non-positive values select the default.
func ClampProductivityDays(days int) int {
	if days <= 0 {
		return DefaultProductivityDays
	}
	return min(days, MaxProductivityDays)
}

// ProductivityScore is the completion rate over the daily buckets from
// today-days through today inclusive. days is clamped to MaxProductivityDays.
func (uc *UseCase) ProductivityScore(userID string, days int) float64 {
	days = ClampProductivityDays(days)
	now := uc.now().UTC()

	uc.mu.RLock()
	defer uc.mu.RUnlock()
	b, ok := uc.scopes[userID]
	if !ok {
		return 0
	}
	var total domain.Metrics
	for d := days; d >= 0; d-- {
		key := domain.PeriodDay.BucketKey(now.AddDate(0, 0, -d))
		if m, ok := b[domain.PeriodDay][key]; ok {
			total.TasksCreated += m.TasksCreated
			total.TasksCompleted += m.TasksCompleted
		}
	}
	return total.CompletionRate()
}
