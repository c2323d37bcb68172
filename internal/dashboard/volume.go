package dashboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/telhawk-systems/opsboard/internal/aggregate"
	"github.com/telhawk-systems/opsboard/internal/apiclient"
	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/internal/poller"
)

// VolumeService polls the timeline and buckets it into hourly volume on read.
type VolumeService struct {
	snapshot[[]models.TimelineEvent]

	mu        sync.RWMutex
	timeRange models.TimeRange
}

// NewVolumeService creates a stopped timeline poller bucketing over r.
func NewVolumeService(src TimelineSource, r models.TimeRange, opts PollerOptions) *VolumeService {
	if !r.Valid() {
		r = models.TimeRange24h
	}
	p := poller.New[[]models.TimelineEvent](src.Timeline, opts.config(apiclient.PathTimeline))
	return &VolumeService{snapshot: snapshot[[]models.TimelineEvent]{poller: p}, timeRange: r}
}

// SetTimeRange switches the bucketing window and refetches the timeline. The
// poller schedule is left as the orchestrator configured it.
func (s *VolumeService) SetTimeRange(r models.TimeRange) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTimeRange, r)
	}

	s.mu.Lock()
	s.timeRange = r
	s.mu.Unlock()

	s.poller.Refresh()
	return nil
}

// TimeRange returns the current bucketing window.
func (s *VolumeService) TimeRange() models.TimeRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeRange
}

// Timeline returns a copy of the last fetched timeline.
func (s *VolumeService) Timeline() []models.TimelineEvent {
	events, _ := s.poller.Value()
	out := make([]models.TimelineEvent, len(events))
	copy(out, events)
	return out
}

// Volume buckets the last fetched timeline over the current range ending at now.
func (s *VolumeService) Volume(now time.Time) models.WorkflowVolumeResponse {
	r := s.TimeRange()
	events, _ := s.poller.Value()
	return models.WorkflowVolumeResponse{
		Volumes:   aggregate.CalculateVolumeFromEvents(events, r, now),
		TimeRange: r,
	}
}
