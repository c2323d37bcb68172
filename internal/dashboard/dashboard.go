// Package dashboard binds the pollers, the live stream and the derived
// aggregates into the services behind the dashboard view.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/internal/poller"
)

var (
	// ErrInvalidFilter is returned for an unknown event category filter.
	ErrInvalidFilter = errors.New("invalid event filter")

	// ErrInvalidTimeRange is returned for an unknown volume time range.
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// OverviewSource fetches the summary counters.
type OverviewSource interface {
	Overview(ctx context.Context) (models.WorkflowOverview, error)
}

// AnomalySource fetches the current anomaly snapshot.
type AnomalySource interface {
	Anomalies(ctx context.Context) ([]models.Anomaly, error)
}

// TimelineSource fetches the recent timeline events.
type TimelineSource interface {
	Timeline(ctx context.Context) ([]models.TimelineEvent, error)
}

// PollerOptions are shared by every snapshot service.
type PollerOptions struct {
	// Interval is the schedule used until the refresh orchestrator sets one.
	Interval time.Duration

	// Timeout bounds each fetch.
	Timeout time.Duration

	// NewTicker overrides the schedule source, for tests.
	NewTicker poller.TickerFactory

	// OnError receives every failed fetch.
	OnError func(err error)

	Logger *slog.Logger
}

func (o PollerOptions) config(endpoint string) poller.Config {
	return poller.Config{
		Endpoint:  endpoint,
		Interval:  o.Interval,
		Timeout:   o.Timeout,
		NewTicker: o.NewTicker,
		OnError:   o.OnError,
		Logger:    o.Logger,
	}
}

// snapshot is the scheduling surface shared by the snapshot services.
type snapshot[T any] struct {
	poller *poller.Poller[T]
}

// StartPolling runs the poller at interval, fetching immediately. A
// non-positive interval keeps the current one.
func (s snapshot[T]) StartPolling(interval time.Duration) {
	s.poller.UpdateInterval(interval)
	s.poller.Start()
}

// StopPolling cancels the schedule. The cached snapshot is kept.
func (s snapshot[T]) StopPolling() {
	s.poller.Stop()
}

// Refresh fetches once without touching the schedule.
func (s snapshot[T]) Refresh() {
	s.poller.Refresh()
}

// Close stops the poller and waits for in-flight fetches.
func (s snapshot[T]) Close() {
	s.poller.Close()
}

// Status reports the poller schedule and cache state.
func (s snapshot[T]) Status() poller.Status {
	return s.poller.Status()
}
