package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/telhawk-systems/opsboard/common/config"
	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/apiclient"
	"github.com/telhawk-systems/opsboard/internal/dashboard"
	"github.com/telhawk-systems/opsboard/internal/handlers"
	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/internal/notify"
	"github.com/telhawk-systems/opsboard/internal/server"
	"github.com/telhawk-systems/opsboard/internal/store"
	"github.com/telhawk-systems/opsboard/internal/stream"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard and its HTTP API",
		Long: `Starts polling the backend stats endpoints, connects to the live event
stream and serves the dashboard JSON API and Prometheus metrics.

Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
			if err != nil {
				return fmt.Errorf("failed to listen: %w", err)
			}
			return runServe(ctx, a.cfg, a.logger, ln)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides server.port)")
	return cmd
}

// runServe starts the board and serves its API on ln until ctx is cancelled.
func runServe(ctx context.Context, cfg *config.Config, logger *logging.Logger, ln net.Listener) error {
	board, err := buildBoard(cfg, logger.Logger)
	if err != nil {
		_ = ln.Close()
		return err
	}

	router := server.NewRouter(server.RouterConfig{
		DashboardHandler: handlers.NewDashboardHandler(board, logger),
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		Logger:           logger.Logger,
	})
	srv := server.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, srv, ln, logger.Logger)
	})
	g.Go(func() error {
		defer board.Close()
		// A stream failure is surfaced as a notification; polling keeps running.
		_ = board.Start(gctx)
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

// buildBoard wires one instance of every dashboard component from cfg.
func buildBoard(cfg *config.Config, logger *slog.Logger) (*dashboard.Board, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := apiclient.New(cfg.BaseURL, cfg.Polling.RequestTimeout)
	center := notify.NewCenter(logger)

	opts := func(interval time.Duration) dashboard.PollerOptions {
		return dashboard.PollerOptions{
			Interval: interval,
			Timeout:  cfg.Polling.RequestTimeout,
			Logger:   logger,
		}
	}

	registry := stream.DefaultRegistry(stream.RegistryOptions{
		Logger: logger,
	})
	history := store.NewBounded[models.WorkflowEvent](cfg.History.MaxEvents)

	return dashboard.NewBoard(dashboard.BoardConfig{
		Overview:      dashboard.NewOverviewService(client, opts(cfg.Polling.OverviewInterval)),
		Anomalies:     dashboard.NewAnomalyService(client, loc, opts(cfg.Polling.AnomaliesInterval)),
		Volume:        dashboard.NewVolumeService(client, models.TimeRange(cfg.Volume.TimeRange), opts(cfg.Polling.TimelineInterval)),
		Events:        dashboard.NewEventsService(registry, cfg.Stream.URL, history, center, logger),
		Notifications: center,
		Refresh:       cfg.Refresh.Model(),
		Now:           func() time.Time { return time.Now().In(loc) },
		Logger:        logger,
	}), nil
}
