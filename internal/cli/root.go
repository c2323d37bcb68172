// Package cli implements the opsboard command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/opsboard/common/config"
	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/pkg/output"
)

// Version is stamped at build time with -ldflags.
var Version = "0.1.0"

// app carries the state shared by every subcommand after flag parsing.
type app struct {
	cfgFile string
	format  string

	cfg     *config.Config
	logger  *logging.Logger
	printer *output.Printer
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "opsboard",
		Short: "Real-time workflow operations dashboard",
		Long: `opsboard follows a workflow backend's live event stream and stats
endpoints, keeps a bounded event history, and serves the derived dashboard
(metric cards, event timeline, workflow volume, anomaly heatmap) over a JSON API.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.opsboard/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&a.format, "output", "o", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(
		newServeCmd(a),
		newSnapshotCmd(a),
		newTailCmd(a),
		newMockCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(a.format)
	if err != nil {
		return err
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	a.cfg = cfg

	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(a.logger)

	a.printer = &output.Printer{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr(), Format: format}
	return nil
}
