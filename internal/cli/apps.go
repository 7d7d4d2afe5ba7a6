package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/dispatch"
	"github.com/jwulff/flowscribe/internal/output"
)

func newAppsCmd(deps *Dependencies) *cobra.Command {
	req := dispatch.AppsRequest{}
	var format string

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Show per-app usage statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Dispatcher().Dispatch(req)
			if err != nil {
				return err
			}
			result := res.(dispatch.AppsResult)
			out := deps.Formatter(os.Stdout)
			if format == "json" {
				return out.JSON(result)
			}
			if len(result.Apps) == 0 {
				out.Info("No apps found.")
				return nil
			}
			cmd.Printf("%-24s  %8s  %10s  %8s\n", "APP", "ENTRIES", "DURATION", "WORDS")
			for _, a := range result.Apps {
				cmd.Printf("%-24s  %8d  %10s  %8d\n",
					output.Truncate(a.Name, 24), a.Entries,
					output.FormatDuration(a.TotalDuration), a.TotalWords)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Since, "since", "", "statistics since this date/time")
	cmd.Flags().StringVar(&req.Until, "until", "", "statistics until this date/time")
	cmd.Flags().StringVar(&req.App, "app", "", "filter by app (bundle ID or name)")
	cmd.Flags().StringVar(&req.SortBy, "sort-by", "entries", "sort key (entries, words, duration, latency, last_used)")
	cmd.Flags().IntVar(&req.MinEntries, "min-entries", 1, "minimum entry count to include an app")
	cmd.Flags().IntVarP(&req.Limit, "limit", "l", 20, "maximum number of apps")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table, json)")

	return cmd
}
