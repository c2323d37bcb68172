package aggregate

import (
	"sort"
	"time"

	"github.com/telhawk-systems/opsboard/internal/models"
)

// HoursFromRange returns the number of hours covered by r. Unknown ranges cover 24.
func HoursFromRange(r models.TimeRange) int {
	switch r {
	case models.TimeRange6h:
		return 6
	case models.TimeRange12h:
		return 12
	default:
		return 24
	}
}

// CalculateVolumeFromEvents counts events per hour-of-day over the hours in r
// ending at now. Hours are taken in now's location, and timestamps without a
// zone are read in it.
//
// Buckets are keyed by hour-of-day only, so two calendar hours that share an
// hour-of-day fall into the same bucket. Events at or after the cutoff are
// counted, including ones timestamped after now. Events with unparseable
// timestamps are skipped. The result is sorted by hour ascending.
func CalculateVolumeFromEvents(events []models.TimelineEvent, r models.TimeRange, now time.Time) []models.WorkflowVolumeData {
	hours := HoursFromRange(r)
	loc := now.Location()
	cutoff := now.Add(-time.Duration(hours) * time.Hour)

	buckets := make(map[int]*models.WorkflowVolumeData, hours)
	for i := 0; i < hours; i++ {
		hourTime := now.Add(-time.Duration(i) * time.Hour)
		hour := hourTime.In(loc).Hour()
		if _, ok := buckets[hour]; !ok {
			buckets[hour] = &models.WorkflowVolumeData{
				Timestamp: models.FormatTimestamp(hourTime),
				Hour:      hour,
			}
		}
	}

	for _, e := range events {
		ts, err := models.ParseTimestampIn(e.Timestamp, loc)
		if err != nil || ts.Before(cutoff) {
			continue
		}
		if b, ok := buckets[ts.In(loc).Hour()]; ok {
			b.Count++
		}
	}

	out := make([]models.WorkflowVolumeData, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// MaxVolume returns the largest bucket count, or 0 for no buckets.
func MaxVolume(volumes []models.WorkflowVolumeData) int {
	highest := 0
	for _, v := range volumes {
		if v.Count > highest {
			highest = v.Count
		}
	}
	return highest
}

// TotalVolume sums every bucket count.
func TotalVolume(volumes []models.WorkflowVolumeData) int {
	total := 0
	for _, v := range volumes {
		total += v.Count
	}
	return total
}
