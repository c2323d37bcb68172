package models

import "time"

// NotificationType selects how a notification is presented.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// DefaultNotificationDuration applies when no duration is given.
const DefaultNotificationDuration = 5 * time.Second

// Notification is a user-visible toast. A zero Duration means it stays
// until removed explicitly.
type Notification struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Duration  time.Duration    `json:"duration"`
	Timestamp time.Time        `json:"timestamp"`
}

// Persistent reports whether the notification never expires.
func (n Notification) Persistent() bool {
	return n.Duration <= 0
}
