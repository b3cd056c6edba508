package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xab-mack/optistats/internal/config"
	"github.com/xab-mack/optistats/internal/engine"
	"github.com/xab-mack/optistats/internal/rank"
	"github.com/xab-mack/optistats/internal/report"
	"github.com/xab-mack/optistats/internal/tui"
)

// Options holds the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	Debug      bool
}

// config resolves the configuration: an explicit --config file, or the
// nearest .optistats.yaml above the working directory.
func (o *Options) config() (config.Config, error) {
	if o.ConfigPath != "" {
		return config.LoadFile(o.ConfigPath)
	}
	cfg, _, err := config.Load(".")
	return cfg, err
}

func AddCommands(root *cobra.Command, opts *Options) {
	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newCompareCmd(opts))
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newCrawlCmd(opts))
	root.AddCommand(newRanksCmd())
	root.AddCommand(newTypesCmd(opts))
	root.AddCommand(newInitCmd())
}

type outputFlags struct {
	format    string
	out       string
	rankTable string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "Output format: table|json|markdown|html|sarif|sqlite")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Write the report to a file, relative to resultsDir (required for sqlite)")
	cmd.Flags().StringVar(&f.rankTable, "rank-table", "", "Rank table (JSON or CSV); overrides rankTable from the config")
}

func newEngine(cfg config.Config, rankTable string) (*engine.Engine, error) {
	if rankTable == "" {
		rankTable = cfg.RankTable
	}
	var ranks *rank.Table
	if rankTable != "" {
		t, err := rank.Load(rankTable)
		if err != nil {
			return nil, err
		}
		slog.Debug("loaded rank table", "path", rankTable, "entries", t.Len())
		ranks = t
	}
	return engine.New(cfg, ranks)
}

func labels(cfg config.Config) report.Labels {
	return report.DefaultLabels().WithOverrides(cfg.Labels)
}

// outPath resolves a relative --out against the configured results
// directory, creating the parent directory.
func outPath(cfg config.Config, out string) (string, error) {
	if out == "" {
		return "", nil
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(cfg.ResultsDir, out)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	return out, nil
}

// writeReport renders doc to --out, or to the command's stdout.
func writeReport(cmd *cobra.Command, cfg config.Config, f outputFlags, doc report.Document) error {
	reg := report.Default()
	out, err := outPath(cfg, f.out)
	if err != nil {
		return err
	}
	if reg.NeedsPath(f.format) || out == "" {
		return reg.Write(cmd.Context(), f.format, cmd.OutOrStdout(), out, doc)
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := reg.Write(cmd.Context(), f.format, file, "", doc); err != nil {
		file.Close() //nolint:errcheck
		return err
	}
	return file.Close()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newAnalyzeCmd(opts *Options) *cobra.Command {
	var (
		flags  outputFlags
		useTUI bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <results-dir>",
		Short: "Aggregate a native result corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			eng, err := newEngine(cfg, flags.rankTable)
			if err != nil {
				return err
			}
			a, err := eng.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if useTUI {
				if !isTerminal(cmd.OutOrStdout()) {
					return fmt.Errorf("--tui requires a terminal")
				}
				return tui.Run(a, labels(cfg))
			}
			return writeReport(cmd, cfg, flags, report.ForAnalysis(a, labels(cfg)))
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Browse the aggregate interactively")
	return cmd
}

func newCompareCmd(opts *Options) *cobra.Command {
	var flags outputFlags
	cmd := &cobra.Command{
		Use:   "compare <native-dir> <baseline-dir>",
		Short: "Compare a native result corpus with a baseline corpus",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			eng, err := newEngine(cfg, flags.rankTable)
			if err != nil {
				return err
			}
			c, err := eng.Compare(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeReport(cmd, cfg, flags, report.ForComparison(c, labels(cfg)))
		},
	}
	flags.register(cmd)
	return cmd
}
