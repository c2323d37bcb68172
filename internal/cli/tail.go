package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/opsboard/internal/aggregate"
	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/internal/stream"
	"github.com/telhawk-systems/opsboard/pkg/output"
)

func newTailCmd(a *app) *cobra.Command {
	var (
		url    string
		filter string
		count  int
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print live workflow events until interrupted",
		Example: `  opsboard tail
  opsboard tail --filter anomaly
  opsboard tail --url nats://localhost:4222/workflow.events -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !aggregate.ValidEventFilter(filter) {
				return fmt.Errorf("invalid filter %q (want all, completed, pending or anomaly)", filter)
			}
			if url == "" {
				url = a.cfg.Stream.URL
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			registry := stream.DefaultRegistry(stream.RegistryOptions{
				Logger: a.logger.Logger,
			})
			return tail(ctx, registry, url, filter, count, a.printer)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "stream URL (default stream.url)")
	cmd.Flags().StringVar(&filter, "filter", models.FilterAll, "event category: all, completed, pending, anomaly")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after this many events (0 = unlimited)")
	return cmd
}

// tail prints events from url until ctx is done, the transport fails or
// count matching events have been printed.
func tail(ctx context.Context, registry *stream.Registry, url, filter string, count int, p *output.Printer) error {
	transportErr := make(chan error, 1)
	done := make(chan struct{})
	printed := 0

	m := stream.NewManager(registry, stream.ManagerConfig{
		OnTransportError: func(err error) {
			select {
			case transportErr <- err:
			default:
			}
		},
	})

	// Delivery is sequential per connection, so printed needs no lock.
	handler := func(e models.WorkflowEvent) {
		if len(aggregate.FilterEventsByCategory([]models.WorkflowEvent{e}, filter)) == 0 {
			return
		}
		if count > 0 && printed >= count {
			return
		}
		printEvent(p, e)
		printed++
		if count > 0 && printed == count {
			close(done)
		}
	}

	if err := m.Connect(ctx, url, handler); err != nil {
		return err
	}
	defer m.Disconnect()

	select {
	case <-ctx.Done():
		return nil
	case <-done:
		return nil
	case err := <-transportErr:
		return err
	}
}

func printEvent(p *output.Printer, e models.WorkflowEvent) {
	if p.Format != output.FormatTable {
		_ = p.Print(e, nil)
		return
	}
	fmt.Fprintf(p.Out, "%s  %-9s  %-8s  %s\n", e.Timestamp, aggregate.MapEventTypeToStatus(e.Type), e.Severity, e.Message)
}
