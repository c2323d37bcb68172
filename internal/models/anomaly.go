package models

// AnomalySeverity ranks detected anomalies.
type AnomalySeverity string

const (
	AnomalySeverityLow      AnomalySeverity = "low"
	AnomalySeverityMedium   AnomalySeverity = "medium"
	AnomalySeverityHigh     AnomalySeverity = "high"
	AnomalySeverityCritical AnomalySeverity = "critical"
)

// Known anomaly types reported by the backend.
const (
	AnomalyUnusualDelay           = "Unusual Delay"
	AnomalySLABreach              = "SLA Breach"
	AnomalySystemError            = "System Error"
	AnomalyPerformanceDegradation = "Performance Degradation"
)

// Anomaly is a detected deviation reported by /stats/anomalies.
type Anomaly struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Severity    AnomalySeverity `json:"severity"`
	Timestamp   string          `json:"timestamp"`
	Description string          `json:"description"`
}

// AnomaliesResponse is the payload of GET /stats/anomalies.
type AnomaliesResponse struct {
	Anomalies []Anomaly `json:"anomalies"`
}

// HeatmapDataPoint groups anomalies sharing an hour-of-day and severity.
type HeatmapDataPoint struct {
	Hour      int             `json:"hour"`
	Severity  AnomalySeverity `json:"severity"`
	Count     int             `json:"count"`
	Anomalies []Anomaly       `json:"anomalies"`
}

// HeatmapCell is one cell of the 24x4 hour/severity grid.
type HeatmapCell struct {
	Hour       int             `json:"hour"`
	Severity   AnomalySeverity `json:"severity"`
	Count      int             `json:"count"`
	Intensity  float64         `json:"intensity"`
	AnomalyIDs []string        `json:"anomalyIds"`
}
