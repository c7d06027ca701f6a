package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase"
)

// MaxPerUser is the retention cap; the oldest notification is evicted first.
const MaxPerUser = 100

// UseCase turns task events into per-user notifications, kept newest first.
type UseCase struct {
	mu     sync.RWMutex
	inbox  map[string][]domain.Notification
	now    usecase.Clock
	newID  func() string
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
		inbox:  make(map[string][]domain.Notification),
		now:    clock,
		newID:  uuid.NewString,
		logger: logger,
	}
}

func (uc *UseCase) HandleTaskChange(ctx context.Context, ev domain.ChangeEvent) error {
	task := ev.Task
	if task == nil {
		return domain.Wrapf(domain.ErrInvalidPayload, "change event without task")
	}

	var n domain.Notification
	switch ev.Kind {
	case domain.ChangeDeadlineApproaching:
		n = domain.Notification{
			Title:   "Deadline Approaching",
			Message: fmt.Sprintf("Task %q is due soon.", task.Title),
			Type:    domain.NotificationWarning,
			UserID:  task.CreatedBy,
		}
	case domain.ChangeCompleted:
		n = domain.Notification{
			Title:   "Task Completed",
			Message: fmt.Sprintf("Task %q has been completed.", task.Title),
			Type:    domain.NotificationSuccess,
			UserID:  task.CreatedBy,
		}
	case domain.ChangeAssigned:
		n = domain.Notification{
			Title:   "New Task Assignment",
			Message: fmt.Sprintf("You have been assigned to task %q.", task.Title),
			Type:    domain.NotificationInfo,
			UserID:  task.Recipient(),
		}
	case domain.ChangeCommentAdded:
		n = domain.Notification{
			Title:   "New Comment",
			Message: fmt.Sprintf("New comment on task %q.", task.Title),
			Type:    domain.NotificationInfo,
			UserID:  task.CreatedBy,
		}
	default:
		return nil
	}

	n.TaskID = task.ID
	if !ev.OccurredAt.IsZero() {
		n.Timestamp = ev.OccurredAt
	}
	_, err := uc.CreateNotification(ctx, n)
	return err
}

// CreateNotification stores an ad-hoc notification. ID, timestamp and type
// are filled in when missing.
func (uc *UseCase) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if strings.TrimSpace(n.UserID) == "" {
		return domain.Notification{}, domain.Wrapf(domain.ErrInvalidPayload, "notification without recipient")
	}
	if n.ID == "" {
		n.ID = uc.newID()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = uc.now()
	}
	if n.Type == "" {
		n.Type = domain.NotificationInfo
	}
	n.Read = false

	uc.mu.Lock()
	list := append([]domain.Notification{n}, uc.inbox[n.UserID]...)
	if len(list) > MaxPerUser {
		list = list[:MaxPerUser]
	}
	uc.inbox[n.UserID] = list
	uc.mu.Unlock()

	uc.logger.Debug("notification created",
		zap.String("user_id", n.UserID),
		zap.String("type", string(n.Type)),
		zap.String("title", n.Title),
	)
	return n, nil
}

// List returns the user's notifications, newest first.
func (uc *UseCase) List(userID string) []domain.Notification {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	out := make([]domain.Notification, len(uc.inbox[userID]))
	copy(out, uc.inbox[userID])
	return out
}

func (uc *UseCase) UnreadCount(userID string) int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	count := 0
	for _, n := range uc.inbox[userID] {
		if !n.Read {
			count++
		}
	}
	return count
}

func (uc *UseCase) MarkRead(userID, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	list := uc.inbox[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			return nil
		}
	}
	return domain.Wrapf(domain.ErrNotificationNotFound, "notification %s", id)
}

func (uc *UseCase) MarkAllRead(userID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	list := uc.inbox[userID]
	for i := range list {
		list[i].Read = true
	}
}

func (uc *UseCase) Delete(userID, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	list := uc.inbox[userID]
	for i := range list {
		if list[i].ID == id {
			uc.inbox[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return domain.Wrapf(domain.ErrNotificationNotFound, "notification %s", id)
}

// Clear removes every notification of the user.
func (uc *UseCase) Clear(userID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inbox, userID)
}
