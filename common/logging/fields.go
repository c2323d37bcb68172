package logging

import (
	"log/slog"
	"time"
)

// Common field names for consistent logging across components.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldEndpoint  = "endpoint"
	FieldURL       = "url"
	FieldEventID   = "event_id"
	FieldEventType = "event_type"
	FieldInterval  = "interval"
	FieldState     = "state"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

// Component returns a slog attribute naming the emitting component.
func Component(name string) slog.Attr {
	return slog.String(FieldComponent, name)
}

// Endpoint returns a slog attribute for a polled endpoint.
func Endpoint(endpoint string) slog.Attr {
	return slog.String(FieldEndpoint, endpoint)
}

// URL returns a slog attribute for a stream or backend URL.
func URL(url string) slog.Attr {
	return slog.String(FieldURL, url)
}

// EventID returns a slog attribute for a workflow event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// EventType returns a slog attribute for a workflow event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// Interval returns a slog attribute for a polling interval.
func Interval(d time.Duration) slog.Attr {
	return slog.String(FieldInterval, d.String())
}

// State returns a slog attribute for a lifecycle state.
func State(s string) slog.Attr {
	return slog.String(FieldState, s)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Int64(FieldDuration, d.Milliseconds())
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}
