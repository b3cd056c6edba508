package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xab-mack/optistats/internal/engine"
	"github.com/xab-mack/optistats/internal/tools"
)

func newValidateCmd(opts *Options) *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "validate <results-dir>",
		Short: "Check every result file against its schema without aggregating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s tools.Schema
			if schema != "auto" {
				parsed, err := tools.ParseSchema(schema)
				if err != nil {
					return err
				}
				s = parsed
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			eng, err := engine.New(cfg, nil)
			if err != nil {
				return err
			}
			problems, total, err := eng.Validate(cmd.Context(), args[0], s)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintf(w, "%s (%s)\n", p.Path, p.Schema) //nolint:errcheck
				for _, msg := range p.Problems {
					fmt.Fprintf(w, "  - %s\n", msg) //nolint:errcheck
				}
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d of %d files failed validation", len(problems), total)
			}
			fmt.Fprintf(w, "%d files valid\n", total) //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "auto", "Expected schema: native|baseline|auto")
	return cmd
}
