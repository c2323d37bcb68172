// Package mockbackend is a development backend producing synthetic stats
// snapshots and a live workflow event stream.
package mockbackend

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/telhawk-systems/opsboard/internal/models"
)

var anomalyTypes = []string{
	models.AnomalyUnusualDelay,
	models.AnomalySLABreach,
	models.AnomalySystemError,
	models.AnomalyPerformanceDegradation,
}

var anomalySeverities = []string{
	string(models.AnomalySeverityLow),
	string(models.AnomalySeverityMedium),
	string(models.AnomalySeverityHigh),
	string(models.AnomalySeverityCritical),
}

// Generator produces synthetic backend data. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewGenerator creates a generator. A zero seed picks a random one.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed), now: time.Now}
}

// Overview returns a plausible set of summary counters.
func (g *Generator) Overview() models.WorkflowOverview {
	g.mu.Lock()
	defer g.mu.Unlock()

	return models.WorkflowOverview{
		TotalWorkflowsToday:  g.faker.IntRange(80, 400),
		AvgCycleTimeHours:    round1(g.faker.Float64Range(2, 18)),
		SLACompliancePercent: round1(g.faker.Float64Range(85, 100)),
		ActiveAnomaliesCount: g.faker.IntRange(0, 8),
	}
}

// Anomalies returns count anomalies spread over the last 24 hours.
func (g *Generator) Anomalies(count int) []models.Anomaly {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	out := make([]models.Anomaly, 0, count)
	for i := 0; i < count; i++ {
		typ := g.faker.RandomString(anomalyTypes)
		ts := now.Add(-time.Duration(g.faker.IntRange(0, 24*60*60)) * time.Second)
		out = append(out, models.Anomaly{
			ID:          "anom-" + uuid.NewString()[:8],
			Type:        typ,
			Severity:    models.AnomalySeverity(g.faker.RandomString(anomalySeverities)),
			Timestamp:   models.FormatTimestamp(ts),
			Description: g.describeAnomaly(typ),
		})
	}
	return out
}

// Timeline returns count timeline events evenly spread over spread ending now,
// each jittered by up to 40% of the spacing.
func (g *Generator) Timeline(count int, spread time.Duration) []models.TimelineEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	out := make([]models.TimelineEvent, 0, count)
	if count <= 0 {
		return out
	}

	baseInterval := float64(spread) / float64(count)
	jitterRange := baseInterval * 0.4
	for i := 0; i < count; i++ {
		offset := time.Duration(float64(i)*baseInterval + (g.faker.Float64()*2-1)*jitterRange)
		if offset < 0 {
			offset = 0
		}
		if offset > spread {
			offset = spread
		}
		ts := now.Add(-(spread - offset))
		out = append(out, models.TimelineEvent{
			Timestamp:  models.FormatTimestamp(ts),
			Type:       string(g.eventType()),
			WorkflowID: g.workflowID(),
		})
	}
	return out
}

// Event returns a new live stream event timestamped now.
func (g *Generator) Event() models.WorkflowEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	typ := g.eventType()
	e := models.WorkflowEvent{
		ID:         "evt-" + uuid.NewString(),
		Type:       typ,
		Timestamp:  models.FormatTimestamp(g.now()),
		WorkflowID: g.workflowID(),
	}

	switch typ {
	case models.EventWorkflowCompleted:
		e.Severity = models.EventSeverityLow
		e.Message = fmt.Sprintf("Workflow %s completed for %s", e.WorkflowID, g.faker.Company())
	case models.EventApprovalPending:
		e.Severity = models.EventSeverityMedium
		e.Message = fmt.Sprintf("Workflow %s awaiting approval from %s", e.WorkflowID, g.faker.Name())
	default:
		e.Severity = models.EventSeverityCritical
		if g.faker.Bool() {
			e.Severity = models.EventSeverityMedium
		}
		e.Message = fmt.Sprintf("%s service degraded: %s", g.faker.AppName(), g.faker.HackerPhrase())
	}
	return e
}

// Handshake is the first message on every stream connection.
func Handshake() models.WorkflowEvent {
	return models.WorkflowEvent{Type: models.EventConnected, Message: "Connected to workflow event stream"}
}

// eventType picks completed 60%, approval 25%, alert 15%.
func (g *Generator) eventType() models.EventType {
	switch n := g.faker.IntRange(1, 100); {
	case n <= 60:
		return models.EventWorkflowCompleted
	case n <= 85:
		return models.EventApprovalPending
	default:
		return models.EventSystemAlert
	}
}

func (g *Generator) workflowID() string {
	return g.faker.Numerify("wf-#####")
}

func (g *Generator) describeAnomaly(typ string) string {
	switch typ {
	case models.AnomalyUnusualDelay:
		return fmt.Sprintf("%s workflow exceeded expected duration by %d minutes", g.faker.Company(), g.faker.IntRange(15, 240))
	case models.AnomalySLABreach:
		return fmt.Sprintf("SLA target missed for %s", g.faker.Company())
	case models.AnomalySystemError:
		return fmt.Sprintf("%s returned %d errors in the last hour", g.faker.AppName(), g.faker.IntRange(5, 120))
	default:
		return fmt.Sprintf("Throughput of %s dropped %d%%", g.faker.AppName(), g.faker.IntRange(20, 80))
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
