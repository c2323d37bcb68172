package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/opsboard/internal/models"
)

func TestBuildMetricCards(t *testing.T) {
	cards := BuildMetricCards(models.WorkflowOverview{
		TotalWorkflowsToday:  1234,
		AvgCycleTimeHours:    4.26,
		SLACompliancePercent: 96.04,
		ActiveAnomaliesCount: 0,
	})

	require.Len(t, cards, 4)
	assert.Equal(t, "Total Workflows Today", cards[0].Title)
	assert.Equal(t, "1234", cards[0].Value)
	assert.Equal(t, models.CardInfo, cards[0].Status)

	assert.Equal(t, "Avg Cycle Time", cards[1].Title)
	assert.Equal(t, "4.3h", cards[1].Value)
	assert.Equal(t, models.CardSuccess, cards[1].Status)

	assert.Equal(t, "SLA Compliance", cards[2].Title)
	assert.Equal(t, "96.0%", cards[2].Value)
	assert.Equal(t, models.CardSuccess, cards[2].Status)

	assert.Equal(t, "Active Anomalies", cards[3].Title)
	assert.Equal(t, "0", cards[3].Value)
	assert.Equal(t, models.CardSuccess, cards[3].Status)
}

func TestMetricCardThresholds(t *testing.T) {
	tests := []struct {
		name     string
		overview models.WorkflowOverview
		card     int
		want     models.CardStatus
	}{
		{"cycle time at 12h", models.WorkflowOverview{AvgCycleTimeHours: 12}, 1, models.CardSuccess},
		{"cycle time above 12h", models.WorkflowOverview{AvgCycleTimeHours: 12.1}, 1, models.CardWarning},
		{"sla at 95", models.WorkflowOverview{SLACompliancePercent: 95}, 2, models.CardSuccess},
		{"sla at 90", models.WorkflowOverview{SLACompliancePercent: 90}, 2, models.CardWarning},
		{"sla below 90", models.WorkflowOverview{SLACompliancePercent: 89.9}, 2, models.CardError},
		{"one anomaly", models.WorkflowOverview{ActiveAnomaliesCount: 1}, 3, models.CardWarning},
		{"four anomalies", models.WorkflowOverview{ActiveAnomaliesCount: 4}, 3, models.CardWarning},
		{"five anomalies", models.WorkflowOverview{ActiveAnomaliesCount: 5}, 3, models.CardError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := BuildMetricCards(tt.overview)
			assert.Equal(t, tt.want, cards[tt.card].Status)
		})
	}
}
