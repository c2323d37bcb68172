package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/telhawk-systems/opsboard/internal/aggregate"
	"github.com/telhawk-systems/opsboard/internal/apiclient"
	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/pkg/output"
)

// Snapshot is the one-shot dashboard derived from a single fetch of every
// stats endpoint.
type Snapshot struct {
	GeneratedAt time.Time                     `json:"generatedAt"`
	Overview    models.WorkflowOverview       `json:"overview"`
	Cards       []models.MetricCard           `json:"cards"`
	Volume      models.WorkflowVolumeResponse `json:"volume"`
	Heatmap     []models.HeatmapDataPoint     `json:"heatmap"`
}

func newSnapshotCmd(a *app) *cobra.Command {
	var timeRange string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the stats endpoints once and print the derived dashboard",
		Example: `  opsboard snapshot
  opsboard snapshot --range 6h -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.TimeRange(a.cfg.Volume.TimeRange)
			if timeRange != "" {
				r = models.TimeRange(timeRange)
			}
			if !r.Valid() {
				return fmt.Errorf("invalid time range %q (want 6h, 12h or 24h)", r)
			}
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}

			client := apiclient.New(a.cfg.BaseURL, a.cfg.Polling.RequestTimeout)
			snap, err := fetchSnapshot(cmd.Context(), client, r, loc, time.Now().In(loc))
			if err != nil {
				return err
			}
			return printSnapshot(a.printer, snap)
		},
	}

	cmd.Flags().StringVar(&timeRange, "range", "", "volume time range: 6h, 12h, 24h (default volume.time_range)")
	return cmd
}

// fetchSnapshot fetches the three stats endpoints concurrently. Any failure
// fails the whole snapshot.
func fetchSnapshot(ctx context.Context, client *apiclient.Client, r models.TimeRange, loc *time.Location, now time.Time) (Snapshot, error) {
	var (
		overview  models.WorkflowOverview
		anomalies []models.Anomaly
		timeline  []models.TimelineEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview, err = client.Overview(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		anomalies, err = client.Anomalies(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		timeline, err = client.Timeline(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		GeneratedAt: now,
		Overview:    overview,
		Cards:       aggregate.BuildMetricCards(overview),
		Volume: models.WorkflowVolumeResponse{
			Volumes:   aggregate.CalculateVolumeFromEvents(timeline, r, now),
			TimeRange: r,
		},
		Heatmap: aggregate.GroupAnomaliesByHourAndSeverity(anomalies, loc),
	}, nil
}

func printSnapshot(p *output.Printer, snap Snapshot) error {
	if p.Format != output.FormatTable {
		return p.Print(snap, nil)
	}

	cards := output.NewTable("METRIC", "VALUE", "STATUS")
	for _, c := range snap.Cards {
		cards.AddRow(c.Title, c.Value, string(c.Status))
	}
	cards.Render(p.Out)
	fmt.Fprintln(p.Out)

	volume := output.NewTable("HOUR", "TIMESTAMP", "COUNT")
	for _, v := range snap.Volume.Volumes {
		volume.AddRow(strconv.Itoa(v.Hour), v.Timestamp, strconv.Itoa(v.Count))
	}
	volume.Render(p.Out)
	p.Info("Total %d workflows over %s (peak %d/h)",
		aggregate.TotalVolume(snap.Volume.Volumes), snap.Volume.TimeRange, aggregate.MaxVolume(snap.Volume.Volumes))
	fmt.Fprintln(p.Out)

	if len(snap.Heatmap) == 0 {
		p.Success("No anomalies in the last 24 hours")
		return nil
	}
	maxCount := aggregate.MaxCount(snap.Heatmap)
	heatmap := output.NewTable("HOUR", "SEVERITY", "COUNT", "INTENSITY")
	for _, point := range snap.Heatmap {
		heatmap.AddRow(
			strconv.Itoa(point.Hour),
			string(point.Severity),
			strconv.Itoa(point.Count),
			strconv.FormatFloat(aggregate.HeatmapIntensity(point.Count, maxCount), 'f', 2, 64),
		)
	}
	heatmap.Render(p.Out)
	return nil
}
