package models

import (
	"fmt"
	"time"
)

// EventType identifies the kind of workflow event pushed by the live stream.
type EventType string

const (
	EventSystemAlert       EventType = "system_alert"
	EventApprovalPending   EventType = "approval_pending"
	EventWorkflowCompleted EventType = "workflow_completed"

	// EventConnected is the handshake sentinel sent when a stream opens.
	// It is never delivered to consumers.
	EventConnected EventType = "connected"
)

// EventSeverity is the severity attached to a workflow event.
type EventSeverity string

const (
	EventSeverityLow      EventSeverity = "low"
	EventSeverityMedium   EventSeverity = "medium"
	EventSeverityCritical EventSeverity = "critical"
)

// EventStatus is the display status derived from an event type.
type EventStatus string

const (
	StatusCompleted EventStatus = "completed"
	StatusPending   EventStatus = "pending"
	StatusAnomaly   EventStatus = "anomaly"
)

// FilterAll selects every event regardless of status.
const FilterAll = "all"

// WorkflowEvent is a single event received from the live stream.
// Events are immutable once received.
type WorkflowEvent struct {
	ID         string        `json:"id"`
	Type       EventType     `json:"type"`
	Severity   EventSeverity `json:"severity"`
	Message    string        `json:"message"`
	Timestamp  string        `json:"timestamp"`
	WorkflowID string        `json:"workflowId,omitempty"`
}

// EntityID returns the identifier used by the bounded event history.
func (e WorkflowEvent) EntityID() string {
	return e.ID
}

// IsHandshake reports whether the event is the stream handshake sentinel.
func (e WorkflowEvent) IsHandshake() bool {
	return e.Type == EventConnected
}

// Time parses the event timestamp.
func (e WorkflowEvent) Time() (time.Time, error) {
	return ParseTimestamp(e.Timestamp)
}

// TimelineEvent is a lightweight event record returned by /stats/timeline.
type TimelineEvent struct {
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type"`
	WorkflowID string `json:"workflowId,omitempty"`
}

// TimelineResponse is the payload of GET /stats/timeline.
type TimelineResponse struct {
	Events []TimelineEvent `json:"events"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 timestamp as produced by the backend.
// Timestamps without a zone are interpreted as local time.
func ParseTimestamp(value string) (time.Time, error) {
	return ParseTimestampIn(value, time.Local)
}

// ParseTimestampIn is ParseTimestamp with zoneless timestamps interpreted
// in loc. Timestamps carrying a zone or offset keep it.
func ParseTimestampIn(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// FormatTimestamp renders t the way the backend does (UTC, millisecond precision).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
