package dashboard

import (
	"time"

	"github.com/telhawk-systems/opsboard/internal/aggregate"
	"github.com/telhawk-systems/opsboard/internal/apiclient"
	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/internal/poller"
)

// AnomalyService polls the anomaly snapshot and derives the heatmap on read.
type AnomalyService struct {
	snapshot[[]models.Anomaly]
	loc *time.Location
}

// NewAnomalyService creates a stopped anomaly poller. Heatmap hours are taken
// in loc (time.Local when nil).
func NewAnomalyService(src AnomalySource, loc *time.Location, opts PollerOptions) *AnomalyService {
	if loc == nil {
		loc = time.Local
	}
	p := poller.New[[]models.Anomaly](src.Anomalies, opts.config(apiclient.PathAnomalies))
	return &AnomalyService{snapshot: snapshot[[]models.Anomaly]{poller: p}, loc: loc}
}

// Anomalies returns a copy of the last snapshot.
func (s *AnomalyService) Anomalies() []models.Anomaly {
	anomalies, _ := s.poller.Value()
	out := make([]models.Anomaly, len(anomalies))
	copy(out, anomalies)
	return out
}

// Heatmap groups the last snapshot by hour-of-day and severity.
func (s *AnomalyService) Heatmap() []models.HeatmapDataPoint {
	anomalies, _ := s.poller.Value()
	return aggregate.GroupAnomaliesByHourAndSeverity(anomalies, s.loc)
}

// Grid returns the full 24x4 heatmap grid for the last snapshot.
func (s *AnomalyService) Grid() []models.HeatmapCell {
	return aggregate.BuildHeatmapGrid(s.Heatmap())
}
