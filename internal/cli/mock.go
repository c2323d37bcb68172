package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/telhawk-systems/opsboard/common/config"
	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/mockbackend"
	"github.com/telhawk-systems/opsboard/internal/server"
)

func newMockCmd(a *app) *cobra.Command {
	var (
		port int
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run a development backend with synthetic data",
		Long: `Serves /stats/overview, /stats/anomalies, /stats/timeline, an SSE stream on
/events and a WebSocket stream on /ws, emitting a generated workflow event
every mock.event_interval.

When mock.nats_url or mock.redis_url is set, every event is also published
to that broker so the nats:// and redis:// stream transports can be exercised.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Mock.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			publishers, err := mockPublishers(ctx, a.cfg.Mock, a.logger)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Mock.Port))
			if err != nil {
				for _, p := range publishers {
					_ = p.Close()
				}
				return fmt.Errorf("failed to listen: %w", err)
			}

			s := mockbackend.New(mockbackend.Config{
				EventInterval: a.cfg.Mock.EventInterval,
				Seed:          seed,
				Publishers:    publishers,
				Logger:        a.logger.Logger,
			})
			return runMock(ctx, s, ln, a.logger)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides mock.port)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for generated data (0 = random)")
	return cmd
}

// runMock serves s on ln and generates events until ctx is cancelled.
func runMock(ctx context.Context, s *mockbackend.Server, ln net.Listener, logger *logging.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	// Request contexts derive from gctx so open streams end on shutdown.
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		return server.Run(gctx, srv, ln, logger.Logger)
	})
	g.Go(func() error {
		return s.Run(gctx)
	})
	return g.Wait()
}

func mockPublishers(ctx context.Context, cfg config.MockConfig, logger *logging.Logger) ([]mockbackend.Publisher, error) {
	var publishers []mockbackend.Publisher

	if cfg.NATSURL != "" {
		p, err := mockbackend.NewNATSPublisher(cfg.NATSURL, logger.Logger)
		if err != nil {
			return nil, err
		}
		logger.Info("publishing mock events to NATS", logging.URL(cfg.NATSURL))
		publishers = append(publishers, p)
	}

	if cfg.RedisURL != "" {
		p, err := mockbackend.NewRedisPublisher(ctx, cfg.RedisURL)
		if err != nil {
			for _, prev := range publishers {
				_ = prev.Close()
			}
			return nil, err
		}
		logger.Info("publishing mock events to Redis", logging.URL(cfg.RedisURL))
		publishers = append(publishers, p)
	}

	return publishers, nil
}
