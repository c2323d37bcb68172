package aggregate

import (
	"time"

	"github.com/telhawk-systems/opsboard/internal/models"
)

// SeverityOrder is the display order of heatmap rows, most severe first.
var SeverityOrder = []models.AnomalySeverity{
	models.AnomalySeverityCritical,
	models.AnomalySeverityHigh,
	models.AnomalySeverityMedium,
	models.AnomalySeverityLow,
}

// SeverityLevel ranks severities from low (1) to critical (4). Unknown severities rank 0.
func SeverityLevel(s models.AnomalySeverity) int {
	switch s {
	case models.AnomalySeverityLow:
		return 1
	case models.AnomalySeverityMedium:
		return 2
	case models.AnomalySeverityHigh:
		return 3
	case models.AnomalySeverityCritical:
		return 4
	default:
		return 0
	}
}

// GroupAnomaliesByHourAndSeverity groups anomalies by (hour-of-day in loc, severity).
// Groups appear in the order their first anomaly was seen. Anomalies with
// unparseable timestamps are skipped. Timestamps without a zone are read in loc.
func GroupAnomaliesByHourAndSeverity(anomalies []models.Anomaly, loc *time.Location) []models.HeatmapDataPoint {
	if loc == nil {
		loc = time.Local
	}

	type key struct {
		hour     int
		severity models.AnomalySeverity
	}
	index := make(map[key]int)
	var out []models.HeatmapDataPoint

	for _, a := range anomalies {
		ts, err := models.ParseTimestampIn(a.Timestamp, loc)
		if err != nil {
			continue
		}
		k := key{hour: ts.In(loc).Hour(), severity: a.Severity}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, models.HeatmapDataPoint{Hour: k.hour, Severity: a.Severity})
		}
		out[i].Count++
		out[i].Anomalies = append(out[i].Anomalies, a)
	}

	if out == nil {
		out = []models.HeatmapDataPoint{}
	}
	return out
}

// HeatmapIntensity returns count relative to maxCount, or 0 when maxCount is 0.
func HeatmapIntensity(count, maxCount int) float64 {
	if maxCount == 0 {
		return 0
	}
	return float64(count) / float64(maxCount)
}

// MaxCount returns the largest count among points, and at least 1.
func MaxCount(points []models.HeatmapDataPoint) int {
	highest := 1
	for _, p := range points {
		if p.Count > highest {
			highest = p.Count
		}
	}
	return highest
}

// BuildHeatmapGrid expands grouped points into a full 24x4 grid ordered by
// SeverityOrder, then hour. Empty cells have zero count and intensity.
func BuildHeatmapGrid(points []models.HeatmapDataPoint) []models.HeatmapCell {
	maxCount := MaxCount(points)

	type key struct {
		hour     int
		severity models.AnomalySeverity
	}
	byKey := make(map[key]models.HeatmapDataPoint, len(points))
	for _, p := range points {
		byKey[key{p.Hour, p.Severity}] = p
	}

	cells := make([]models.HeatmapCell, 0, 24*len(SeverityOrder))
	for _, sev := range SeverityOrder {
		for hour := 0; hour < 24; hour++ {
			cell := models.HeatmapCell{Hour: hour, Severity: sev, AnomalyIDs: []string{}}
			if p, ok := byKey[key{hour, sev}]; ok {
				cell.Count = p.Count
				cell.Intensity = HeatmapIntensity(p.Count, maxCount)
				for _, a := range p.Anomalies {
					cell.AnomalyIDs = append(cell.AnomalyIDs, a.ID)
				}
			}
			cells = append(cells, cell)
		}
	}
	return cells
}
