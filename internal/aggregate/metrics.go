package aggregate

import (
	"fmt"
	"strconv"

	"github.com/telhawk-systems/opsboard/internal/models"
)

// BuildMetricCards derives the summary cards shown for an overview.
func BuildMetricCards(o models.WorkflowOverview) []models.MetricCard {
	return []models.MetricCard{
		{
			Title:  "Total Workflows Today",
			Value:  strconv.Itoa(o.TotalWorkflowsToday),
			Icon:   "📊",
			Status: models.CardInfo,
		},
		{
			Title:  "Avg Cycle Time",
			Value:  fmt.Sprintf("%.1fh", o.AvgCycleTimeHours),
			Icon:   "⏱️",
			Status: cycleTimeStatus(o.AvgCycleTimeHours),
		},
		{
			Title:  "SLA Compliance",
			Value:  fmt.Sprintf("%.1f%%", o.SLACompliancePercent),
			Icon:   "✅",
			Status: slaStatus(o.SLACompliancePercent),
		},
		{
			Title:  "Active Anomalies",
			Value:  strconv.Itoa(o.ActiveAnomaliesCount),
			Icon:   "⚠️",
			Status: anomalyCountStatus(o.ActiveAnomaliesCount),
		},
	}
}

func cycleTimeStatus(hours float64) models.CardStatus {
	if hours > 12 {
		return models.CardWarning
	}
	return models.CardSuccess
}

func slaStatus(percent float64) models.CardStatus {
	switch {
	case percent >= 95:
		return models.CardSuccess
	case percent >= 90:
		return models.CardWarning
	default:
		return models.CardError
	}
}

func anomalyCountStatus(count int) models.CardStatus {
	switch {
	case count == 0:
		return models.CardSuccess
	case count < 5:
		return models.CardWarning
	default:
		return models.CardError
	}
}
