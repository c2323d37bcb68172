// Package refresh applies one auto-refresh control to every dashboard poller
// and the live stream.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/models"
)

// Poller is a recurring fetch the orchestrator can reconfigure.
type Poller interface {
	StartPolling(interval time.Duration)
	StopPolling()
	Refresh()
}

// Stream is the live event connection started and stopped with the pollers.
type Stream interface {
	Connect(ctx context.Context) error
	Disconnect()
}

// Orchestrator is the only component that starts, stops or reconfigures the
// pollers and the stream. Every change applies to all pollers together.
type Orchestrator struct {
	mu      sync.Mutex
	pollers []Poller
	stream  Stream
	config  models.RefreshConfig
	logger  *slog.Logger
}

// New creates an orchestrator. stream may be nil.
func New(cfg models.RefreshConfig, stream Stream, logger *slog.Logger, pollers ...Poller) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		pollers: pollers,
		stream:  stream,
		config:  cfg,
		logger:  logger.With(logging.Component("refresh")),
	}
}

// Start applies the current config to the pollers and connects the stream.
// A stream failure is returned but leaves the pollers running.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	o.applyLocked()
	stream := o.stream
	o.mu.Unlock()

	if stream == nil {
		return nil
	}
	return stream.Connect(ctx)
}

// Stop stops every poller and disconnects the stream.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	for _, p := range o.pollers {
		p.StopPolling()
	}
	stream := o.stream
	o.mu.Unlock()

	if stream != nil {
		stream.Disconnect()
	}
	o.logger.Info("refresh stopped")
}

// ApplyConfig validates and applies cfg. With auto-refresh on, every poller
// restarts at the new interval with an immediate fetch; otherwise all stop.
func (o *Orchestrator) ApplyConfig(cfg models.RefreshConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.config = cfg
	o.applyLocked()
	return nil
}

// Update edits a copy of the current config with fn, then validates and
// applies it as one step, so concurrent partial updates never overwrite each
// other. On a validation error nothing changes and the current config is
// returned.
func (o *Orchestrator) Update(fn func(*models.RefreshConfig)) (models.RefreshConfig, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cfg := o.config
	fn(&cfg)
	if err := cfg.Validate(); err != nil {
		return o.config, err
	}

	o.config = cfg
	o.applyLocked()
	return cfg, nil
}

// SetAutoRefresh toggles auto-refresh, keeping the interval.
func (o *Orchestrator) SetAutoRefresh(enabled bool) error {
	_, err := o.Update(func(cfg *models.RefreshConfig) { cfg.AutoRefresh = enabled })
	return err
}

// SetInterval changes the interval in seconds, keeping the auto-refresh flag.
func (o *Orchestrator) SetInterval(seconds int) error {
	_, err := o.Update(func(cfg *models.RefreshConfig) { cfg.Interval = seconds })
	return err
}

// ManualRefresh triggers one fetch on every poller without touching schedules
// or the auto-refresh flag.
func (o *Orchestrator) ManualRefresh() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, p := range o.pollers {
		p.Refresh()
	}
	o.logger.Debug("manual refresh")
}

// Config returns the current refresh control.
func (o *Orchestrator) Config() models.RefreshConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config
}

func (o *Orchestrator) applyLocked() {
	if !o.config.AutoRefresh {
		for _, p := range o.pollers {
			p.StopPolling()
		}
		o.logger.Info("auto-refresh disabled")
		return
	}

	interval := o.config.IntervalDuration()
	for _, p := range o.pollers {
		p.StartPolling(interval)
	}
	o.logger.Info("auto-refresh applied", logging.Interval(interval), slog.Int("pollers", len(o.pollers)))
}
