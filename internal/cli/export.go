package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/dispatch"
)

func newExportCmd(deps *Dependencies) *cobra.Command {
	req := dispatch.ExportRequest{}
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transcripts in a portable format",
		Long: `Export renders transcripts as json, csv, markdown, or plain text.
By default the result goes to stdout; use --output to write a file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Dispatcher().Dispatch(req)
			if err != nil {
				return err
			}
			result := res.(dispatch.ExportResult)
			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), result.Content)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(result.Content), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			out := deps.Formatter(os.Stdout)
			out.Success(fmt.Sprintf("Exported %d records to %s", result.Count, outPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Format, "format", "json", "export format (json, csv, markdown, text)")
	cmd.Flags().StringVar(&req.Since, "since", "", "start of the date range (1h, 2d, 3w, 2024-01-01)")
	cmd.Flags().StringVar(&req.Until, "until", "", "end of the date range")
	cmd.Flags().StringVar(&req.App, "app", "", "filter by app name or bundle identifier")
	cmd.Flags().IntVarP(&req.Limit, "limit", "l", 0, "maximum number of records (default: all)")
	cmd.Flags().BoolVar(&req.GroupByConversation, "group-by-conversation", false, "export conversations instead of individual entries")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")

	return cmd
}
