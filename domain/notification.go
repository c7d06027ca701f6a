package domain

import "time"

// NotificationType is the severity shown next to a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a message surfaced to one user.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	TaskID    string           `json:"task_id,omitempty"`
	UserID    string           `json:"user_id"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	Type      NotificationType `json:"type"`
}
