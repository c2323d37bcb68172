// Package aggregate derives view models from raw events, anomalies and
// overview snapshots. Every function is pure.
package aggregate

import (
	"time"

	"github.com/telhawk-systems/opsboard/internal/models"
)

// MapEventTypeToStatus maps an event type to its display status.
// Unknown types, including the handshake type, map to pending.
func MapEventTypeToStatus(t models.EventType) models.EventStatus {
	switch t {
	case models.EventWorkflowCompleted:
		return models.StatusCompleted
	case models.EventSystemAlert:
		return models.StatusAnomaly
	default:
		return models.StatusPending
	}
}

// FilterEventsByCategory returns the events whose status matches filter.
// models.FilterAll (or an empty filter) returns every event.
func FilterEventsByCategory(events []models.WorkflowEvent, filter string) []models.WorkflowEvent {
	out := make([]models.WorkflowEvent, 0, len(events))
	if filter == "" || filter == models.FilterAll {
		return append(out, events...)
	}
	for _, e := range events {
		if string(MapEventTypeToStatus(e.Type)) == filter {
			out = append(out, e)
		}
	}
	return out
}

// ValidEventFilter reports whether filter is "all" or a known status.
func ValidEventFilter(filter string) bool {
	switch filter {
	case models.FilterAll, string(models.StatusCompleted), string(models.StatusPending), string(models.StatusAnomaly):
		return true
	}
	return false
}

// NotificationSpec is how a delivered event is announced.
type NotificationSpec struct {
	Type     models.NotificationType
	Duration time.Duration
}

// ClassifyNotification picks the notification type and duration for an event type.
func ClassifyNotification(t models.EventType) NotificationSpec {
	switch t {
	case models.EventWorkflowCompleted:
		return NotificationSpec{Type: models.NotificationSuccess, Duration: 4 * time.Second}
	case models.EventSystemAlert:
		return NotificationSpec{Type: models.NotificationError, Duration: 6 * time.Second}
	case models.EventApprovalPending:
		return NotificationSpec{Type: models.NotificationInfo, Duration: 3 * time.Second}
	default:
		return NotificationSpec{Type: models.NotificationInfo, Duration: 3 * time.Second}
	}
}
