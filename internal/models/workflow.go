package models

// WorkflowOverview holds the summary counters returned by /stats/overview.
type WorkflowOverview struct {
	TotalWorkflowsToday  int     `json:"totalWorkflowsToday"`
	AvgCycleTimeHours    float64 `json:"avgCycleTimeHours"`
	SLACompliancePercent float64 `json:"slaCompliancePercent"`
	ActiveAnomaliesCount int     `json:"activeAnomaliesCount"`
}

// CardStatus colors a metric card.
type CardStatus string

const (
	CardSuccess CardStatus = "success"
	CardWarning CardStatus = "warning"
	CardError   CardStatus = "error"
	CardInfo    CardStatus = "info"
)

// MetricCard is a summary card derived from the overview.
type MetricCard struct {
	Title  string     `json:"title"`
	Value  string     `json:"value"`
	Icon   string     `json:"icon"`
	Status CardStatus `json:"status"`
}

// TimeRange selects the window used for hourly volume.
type TimeRange string

const (
	TimeRange6h  TimeRange = "6h"
	TimeRange12h TimeRange = "12h"
	TimeRange24h TimeRange = "24h"
)

// TimeRangeOption describes a selectable time range.
type TimeRangeOption struct {
	Label string    `json:"label"`
	Value TimeRange `json:"value"`
	Hours int       `json:"hours"`
}

// TimeRangeOptions lists the selectable volume ranges.
var TimeRangeOptions = []TimeRangeOption{
	{Label: "6 Hours", Value: TimeRange6h, Hours: 6},
	{Label: "12 Hours", Value: TimeRange12h, Hours: 12},
	{Label: "24 Hours", Value: TimeRange24h, Hours: 24},
}

// Valid reports whether r is one of the selectable ranges.
func (r TimeRange) Valid() bool {
	for _, opt := range TimeRangeOptions {
		if opt.Value == r {
			return true
		}
	}
	return false
}

// WorkflowVolumeData is the workflow count for one hour-of-day bucket.
type WorkflowVolumeData struct {
	Timestamp string `json:"timestamp"`
	Hour      int    `json:"hour"`
	Count     int    `json:"count"`
}

// WorkflowVolumeResponse is the derived volume view for a time range.
type WorkflowVolumeResponse struct {
	Volumes   []WorkflowVolumeData `json:"volumes"`
	TimeRange TimeRange            `json:"timeRange"`
}
