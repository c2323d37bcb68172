package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/internal/notify"
	"github.com/telhawk-systems/opsboard/internal/poller"
	"github.com/telhawk-systems/opsboard/internal/refresh"
	"github.com/telhawk-systems/opsboard/internal/stream"
)

// Board owns one instance of every dashboard component.
type Board struct {
	Overview      *OverviewService
	Anomalies     *AnomalyService
	Volume        *VolumeService
	Events        *EventsService
	Refresh       *refresh.Orchestrator
	Notifications *notify.Center

	now    func() time.Time
	logger *slog.Logger
}

// BoardConfig lists the components a Board is assembled from. Every
// component is required.
type BoardConfig struct {
	Overview      *OverviewService
	Anomalies     *AnomalyService
	Volume        *VolumeService
	Events        *EventsService
	Notifications *notify.Center
	Refresh       models.RefreshConfig

	// Now is the clock used for volume bucketing. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// NewBoard assembles a board and its refresh orchestrator. Nothing is started.
func NewBoard(cfg BoardConfig) *Board {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Board{
		Overview:      cfg.Overview,
		Anomalies:     cfg.Anomalies,
		Volume:        cfg.Volume,
		Events:        cfg.Events,
		Notifications: cfg.Notifications,
		Refresh:       refresh.New(cfg.Refresh, cfg.Events, cfg.Logger, cfg.Overview, cfg.Anomalies, cfg.Volume),
		now:           cfg.Now,
		logger:        cfg.Logger.With(logging.Component("dashboard")),
	}
}

// Start applies the refresh control and connects the stream. A stream
// failure is reported as a notification and returned; polling continues.
func (b *Board) Start(ctx context.Context) error {
	err := b.Refresh.Start(ctx)
	if err != nil {
		b.logger.Warn("dashboard started without live stream", logging.Error(err))
		b.Notifications.NotifyError(err)
	}
	return err
}

// Close stops every poller, disconnects the stream and drops notifications.
func (b *Board) Close() {
	b.Refresh.Stop()
	b.Overview.Close()
	b.Anomalies.Close()
	b.Volume.Close()
	b.Notifications.Clear()
}

// View is the full dashboard state at one instant.
type View struct {
	GeneratedAt   time.Time                     `json:"generatedAt"`
	Overview      *models.WorkflowOverview      `json:"overview,omitempty"`
	Cards         []models.MetricCard           `json:"cards"`
	Events        []models.WorkflowEvent        `json:"events"`
	Volume        models.WorkflowVolumeResponse `json:"volume"`
	Heatmap       []models.HeatmapCell          `json:"heatmap"`
	Refresh       models.RefreshConfig          `json:"refresh"`
	Stream        StreamView                    `json:"stream"`
	Pollers       []poller.Status               `json:"pollers"`
	Notifications []models.Notification         `json:"notifications"`
}

// StreamView is the stream status plus the pause gate.
type StreamView struct {
	stream.Status
	Paused bool `json:"paused"`
}

// View derives the dashboard from the current caches and history.
func (b *Board) View() View {
	now := b.now()
	v := View{
		GeneratedAt:   now,
		Cards:         b.Overview.Cards(),
		Events:        b.Events.Events(),
		Volume:        b.Volume.Volume(now),
		Heatmap:       b.Anomalies.Grid(),
		Refresh:       b.Refresh.Config(),
		Stream:        b.StreamView(),
		Pollers:       b.PollerStatus(),
		Notifications: b.Notifications.List(),
	}
	if overview, ok := b.Overview.Overview(); ok {
		v.Overview = &overview
	}
	return v
}

// VolumeNow buckets the timeline at the board clock.
func (b *Board) VolumeNow() models.WorkflowVolumeResponse {
	return b.Volume.Volume(b.now())
}

// StreamView returns the stream status and pause gate.
func (b *Board) StreamView() StreamView {
	return StreamView{Status: b.Events.Status(), Paused: b.Events.Paused()}
}

// PollerStatus lists every poller in overview, anomalies, timeline order.
func (b *Board) PollerStatus() []poller.Status {
	return []poller.Status{b.Overview.Status(), b.Anomalies.Status(), b.Volume.Status()}
}
