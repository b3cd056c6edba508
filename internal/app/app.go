package app

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/xab-mack/optistats/internal/cli"
)

func BuildRoot() *cobra.Command {
	opts := &cli.Options{}
	root := &cobra.Command{
		Use:           "optistats",
		Short:         "Aggregate and compare gas-optimization analysis results for smart contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.Debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (default: nearest .optistats.yaml)")
	cli.AddCommands(root, opts)
	return root
}
