package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/dispatch"
	"github.com/jwulff/flowscribe/internal/output"
)

func newSearchCmd(deps *Dependencies) *cobra.Command {
	req := dispatch.SearchRequest{}
	var format string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search transcripts for text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Query = args[0]
			res, err := deps.Dispatcher().Dispatch(req)
			if err != nil {
				return err
			}
			result := res.(dispatch.SearchResult)
			out := deps.Formatter(os.Stdout)
			switch format {
			case "json":
				return out.JSON(result)
			case "text":
				for _, e := range result.Entries {
					cmd.Println(e.DisplayText())
				}
				return nil
			default:
				out.SearchResults(result.Entries, result.Query)
				out.Info("total: " + output.FormatDuration(result.TotalDuration))
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&req.Since, "since", "", "search entries since this date/time")
	cmd.Flags().StringVar(&req.Until, "until", "", "search entries until this date/time")
	cmd.Flags().StringVar(&req.App, "app", "", "filter by app (bundle ID or name)")
	cmd.Flags().IntVarP(&req.Limit, "limit", "l", 50, "maximum number of results")
	cmd.Flags().BoolVar(&req.AllFields, "all-fields", false, "match ASR, formatted, and edited text")
	cmd.Flags().BoolVar(&req.IncludeArchived, "include-archived", false, "include archived entries")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table, json, text)")

	return cmd
}
