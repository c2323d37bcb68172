package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/aggregate"
	"github.com/telhawk-systems/opsboard/internal/metrics"
	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/internal/store"
	"github.com/telhawk-systems/opsboard/internal/stream"
)

// Notifier announces delivered events and stream failures.
type Notifier interface {
	NotifyEvent(event models.WorkflowEvent)
	NotifyError(err error)
}

// EventsService consumes the live stream into the bounded event history.
// While paused, events are still received but neither stored nor announced,
// and they are not replayed on resume.
type EventsService struct {
	manager  *stream.Manager
	url      string
	history  *store.Bounded[models.WorkflowEvent]
	notifier Notifier
	logger   *slog.Logger
	paused   atomic.Bool
}

// NewEventsService creates a disconnected events service streaming from url
// using transports from reg. Transport errors are sent to notifier.
func NewEventsService(reg *stream.Registry, url string, history *store.Bounded[models.WorkflowEvent], notifier Notifier, logger *slog.Logger) *EventsService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &EventsService{
		url:      url,
		history:  history,
		notifier: notifier,
		logger:   logger.With(logging.Component("events")),
	}
	s.manager = stream.NewManager(reg, stream.ManagerConfig{
		OnTransportError: notifier.NotifyError,
		Logger:           logger,
	})
	metrics.EventHistorySize.Set(float64(history.Len()))
	return s
}

// Connect opens the live stream. It is a no-op while connected.
func (s *EventsService) Connect(ctx context.Context) error {
	return s.manager.Connect(ctx, s.url, s.handle)
}

// Disconnect closes the live stream.
func (s *EventsService) Disconnect() {
	s.manager.Disconnect()
}

// Pause stops storing and announcing events without closing the stream.
func (s *EventsService) Pause() {
	if !s.paused.Swap(true) {
		s.logger.Info("event stream paused")
	}
}

// Resume stores and announces events arriving from now on.
func (s *EventsService) Resume() {
	if s.paused.Swap(false) {
		s.logger.Info("event stream resumed")
	}
}

// Paused reports whether the pause gate is closed.
func (s *EventsService) Paused() bool {
	return s.paused.Load()
}

// Events returns the history, oldest first.
func (s *EventsService) Events() []models.WorkflowEvent {
	return s.history.All()
}

// Filtered returns the history restricted to one status category.
func (s *EventsService) Filtered(filter string) ([]models.WorkflowEvent, error) {
	if filter == "" {
		filter = models.FilterAll
	}
	if !aggregate.ValidEventFilter(filter) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}
	return aggregate.FilterEventsByCategory(s.history.All(), filter), nil
}

// URL returns the stream URL.
func (s *EventsService) URL() string {
	return s.url
}

// Status reports the stream connection state.
func (s *EventsService) Status() stream.Status {
	return s.manager.Status()
}

func (s *EventsService) handle(event models.WorkflowEvent) {
	if s.paused.Load() {
		metrics.StreamMessagesTotal.WithLabelValues(metrics.OutcomePaused).Inc()
		s.logger.Debug("event dropped while paused", logging.EventID(event.ID))
		return
	}

	if evicted := s.history.Add(event); evicted > 0 {
		metrics.EventHistoryEvictions.Add(float64(evicted))
	}
	metrics.EventHistorySize.Set(float64(s.history.Len()))

	s.notifier.NotifyEvent(event)
}
