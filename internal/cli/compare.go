package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/ua-bench/internal/output"
)

type compareOptions struct {
	markdown      bool
	allFields     bool
	conflictsOnly bool
}

func newCompareCmd(root *rootOptions) *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare <report.json>",
		Short: "Re-render comparison and cost tables from a saved run report",
		Example: `  ua-bench compare results/3f1c.../report.json --conflicts-only
  ua-bench compare report.json --markdown > comparison.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := root.loadConfig(cmd); err != nil {
				return err
			}
			report, err := output.LoadReport(args[0])
			if err != nil {
				return err
			}

			mode := output.ASCII
			if opts.markdown {
				mode = output.Markdown
			}
			printTables(cmd.OutOrStdout(), report, tableOptions{
				mode:          mode,
				allFields:     opts.allFields,
				conflictsOnly: opts.conflictsOnly,
			})
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.markdown, "markdown", false, "render tables as Markdown")
	f.BoolVar(&opts.allFields, "all-fields", false, "list fields no adapter answered")
	f.BoolVar(&opts.conflictsOnly, "conflicts-only", false, "only show inputs with a conflict or a failed adapter")
	return cmd
}
