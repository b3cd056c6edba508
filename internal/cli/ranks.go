package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xab-mack/optistats/internal/model"
	"github.com/xab-mack/optistats/internal/rank"
)

func newRanksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "ranks", Short: "Work with contract rank tables"}
	var out string
	csvCmd := &cobra.Command{
		Use:   "csv <export.json>",
		Short: "Flatten a JSON rank export into CSV with an Id column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close() //nolint:errcheck
			w := cmd.OutOrStdout()
			var file *os.File
			if out != "" {
				if file, err = os.Create(out); err != nil {
					return err
				}
				w = file
			}
			n, err := rank.ExportCSV(in, w)
			if file != nil {
				if cerr := file.Close(); err == nil {
					err = cerr
				}
			}
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", n, out) //nolint:errcheck
			}
			return nil
		},
	}
	csvCmd.Flags().StringVarP(&out, "out", "o", "", "Write CSV to a file instead of stdout")
	cmd.AddCommand(csvCmd)
	return cmd
}

func newTypesCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{Use: "types", Short: "Vulnerability type codes"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known type codes and their labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			l := labels(cfg)
			noise := model.ParseVulnType(cfg.NoiseType)
			for _, t := range model.KnownTypes() {
				note := ""
				if t == noise {
					note = "\tnoise (filtered)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s%s\n", l.Label(t), t, note) //nolint:errcheck
			}
			return nil
		},
	})
	return cmd
}
