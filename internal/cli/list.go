package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/dispatch"
)

func newListCmd(deps *Dependencies) *cobra.Command {
	req := dispatch.ListRequest{}
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcript entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Dispatcher().Dispatch(req)
			if err != nil {
				return err
			}
			list := res.(dispatch.ListResult)
			out := deps.Formatter(os.Stdout)
			switch format {
			case "json":
				return out.JSON(list)
			case "text":
				for _, e := range list.Entries {
					cmd.Println(e.DisplayText())
				}
				return nil
			default:
				verbose, _ := cmd.Flags().GetBool("verbose")
				out.EntryTable(list.Entries, verbose)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&req.Since, "since", "2d", "show entries since this date/time")
	cmd.Flags().StringVar(&req.Until, "until", "", "show entries until this date/time")
	cmd.Flags().StringVar(&req.App, "app", "", "filter by app (bundle ID or name)")
	cmd.Flags().StringVar(&req.Status, "status", "", "filter by status (e.g. formatted, empty)")
	cmd.Flags().StringVar(&req.ConversationID, "conversation", "", "filter by conversation ID")
	cmd.Flags().IntVar(&req.MinWords, "min-words", 0, "minimum word count")
	cmd.Flags().IntVarP(&req.Limit, "limit", "l", 20, "maximum number of entries")
	cmd.Flags().IntVar(&req.Offset, "offset", 0, "number of entries to skip")
	cmd.Flags().BoolVar(&req.IncludeArchived, "include-archived", false, "include archived entries")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table, json, text)")
	cmd.Flags().BoolP("verbose", "v", false, "show full text content")

	return cmd
}
