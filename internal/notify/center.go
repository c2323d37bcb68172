// Package notify keeps the list of user-visible notifications.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/aggregate"
	"github.com/telhawk-systems/opsboard/internal/metrics"
	"github.com/telhawk-systems/opsboard/internal/models"
)

// Center holds active notifications in the order they were shown.
// Notifications with a positive duration expire on their own.
type Center struct {
	mu       sync.Mutex
	items    []models.Notification
	timers   map[string]*time.Timer
	counter  int
	now      func() time.Time
	logger   *slog.Logger
	onChange []func([]models.Notification)
}

// NewCenter creates an empty notification center.
func NewCenter(logger *slog.Logger) *Center {
	if logger == nil {
		logger = slog.Default()
	}
	return &Center{
		timers: make(map[string]*time.Timer),
		now:    time.Now,
		logger: logger.With(logging.Component("notify")),
	}
}

// Show adds a notification and returns its id. A zero duration keeps it until
// Remove or Clear.
func (c *Center) Show(message string, typ models.NotificationType, duration time.Duration) string {
	c.mu.Lock()
	c.counter++
	now := c.now()
	n := models.Notification{
		ID:        fmt.Sprintf("toast-%d-%d", c.counter, now.UnixMilli()),
		Message:   message,
		Type:      typ,
		Duration:  duration,
		Timestamp: now,
	}
	c.items = append(c.items, n)
	if duration > 0 {
		id := n.ID
		c.timers[id] = time.AfterFunc(duration, func() { c.Remove(id) })
	}
	snapshot, listeners := c.snapshotLocked()
	c.mu.Unlock()

	metrics.NotificationsTotal.WithLabelValues(string(typ)).Inc()
	c.logger.Debug("notification shown", slog.String("id", n.ID), slog.String("type", string(typ)))
	notifyAll(listeners, snapshot)
	return n.ID
}

// Success shows a success notification with the default duration.
func (c *Center) Success(message string) string {
	return c.Show(message, models.NotificationSuccess, models.DefaultNotificationDuration)
}

// Error shows an error notification with the default duration.
func (c *Center) Error(message string) string {
	return c.Show(message, models.NotificationError, models.DefaultNotificationDuration)
}

// Warning shows a warning notification with the default duration.
func (c *Center) Warning(message string) string {
	return c.Show(message, models.NotificationWarning, models.DefaultNotificationDuration)
}

// Info shows an info notification with the default duration.
func (c *Center) Info(message string) string {
	return c.Show(message, models.NotificationInfo, models.DefaultNotificationDuration)
}

// NotifyEvent announces a delivered stream event, typed and timed by its event type.
func (c *Center) NotifyEvent(event models.WorkflowEvent) {
	spec := aggregate.ClassifyNotification(event.Type)
	c.Show(event.Message, spec.Type, spec.Duration)
}

// NotifyError shows a persistent error notification for err.
func (c *Center) NotifyError(err error) {
	c.Show(err.Error(), models.NotificationError, 0)
}

// Remove deletes the notification with id. Unknown ids are ignored.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	found := false
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			found = true
			break
		}
	}
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	if !found {
		c.mu.Unlock()
		return
	}
	snapshot, listeners := c.snapshotLocked()
	c.mu.Unlock()

	notifyAll(listeners, snapshot)
}

// Clear removes every notification.
func (c *Center) Clear() {
	c.mu.Lock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.items = nil
	snapshot, listeners := c.snapshotLocked()
	c.mu.Unlock()

	notifyAll(listeners, snapshot)
}

// List returns the active notifications, oldest first.
func (c *Center) List() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// OnChange registers fn to receive the full list after every change.
func (c *Center) OnChange(fn func([]models.Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

func (c *Center) snapshotLocked() ([]models.Notification, []func([]models.Notification)) {
	if len(c.onChange) == 0 {
		return nil, nil
	}
	snapshot := make([]models.Notification, len(c.items))
	copy(snapshot, c.items)
	listeners := make([]func([]models.Notification), len(c.onChange))
	copy(listeners, c.onChange)
	return snapshot, listeners
}

func notifyAll(listeners []func([]models.Notification), snapshot []models.Notification) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}
