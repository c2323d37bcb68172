package dashboard

import (
	"github.com/telhawk-systems/opsboard/internal/aggregate"
	"github.com/telhawk-systems/opsboard/internal/apiclient"
	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/internal/poller"
)

// OverviewService polls the summary counters.
type OverviewService struct {
	snapshot[models.WorkflowOverview]
}

// NewOverviewService creates a stopped overview poller over src.
func NewOverviewService(src OverviewSource, opts PollerOptions) *OverviewService {
	p := poller.New[models.WorkflowOverview](src.Overview, opts.config(apiclient.PathOverview))
	return &OverviewService{snapshot: snapshot[models.WorkflowOverview]{poller: p}}
}

// Overview returns the last fetched counters.
func (s *OverviewService) Overview() (models.WorkflowOverview, bool) {
	return s.poller.Value()
}

// Cards returns the metric cards for the last fetched counters, or an empty
// list before the first successful fetch.
func (s *OverviewService) Cards() []models.MetricCard {
	overview, ok := s.poller.Value()
	if !ok {
		return []models.MetricCard{}
	}
	return aggregate.BuildMetricCards(overview)
}
