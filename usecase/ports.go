package usecase

import (
	"context"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Clock returns the current time; tests inject fixed clocks.
type Clock func() time.Time

// SystemClock is the default Clock.
func SystemClock() time.Time {
	return time.Now()
}

// EventPublisher fans task change events out to observers.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

// Notifier posts ad-hoc notifications, such as onboarding messages.
type Notifier interface {
	CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
}
