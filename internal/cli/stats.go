package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/dispatch"
	"github.com/jwulff/flowscribe/internal/output"
)

func newStatsCmd(deps *Dependencies) *cobra.Command {
	req := dispatch.StatsRequest{}
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Dispatcher().Dispatch(req)
			if err != nil {
				return err
			}
			result := res.(dispatch.StatsResult)
			out := deps.Formatter(os.Stdout)
			if format == "json" {
				return out.JSON(result)
			}
			printStats(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Since, "since", "", "statistics since this date/time")
	cmd.Flags().StringVar(&req.Until, "until", "", "statistics until this date/time")
	cmd.Flags().StringVar(&req.App, "app", "", "filter by app (bundle ID or name)")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, json)")

	return cmd
}

func printStats(cmd *cobra.Command, r dispatch.StatsResult) {
	cmd.Printf("Entries:        %d (%d active, %d archived)\n",
		r.TotalEntries, r.ActiveEntries, r.ArchivedEntries)
	cmd.Printf("Total duration: %s\n", output.FormatDuration(r.TotalDuration))
	cmd.Printf("Total words:    %d\n", r.TotalWords)
	if r.AvgDuration != nil {
		cmd.Printf("Avg duration:   %s\n", output.FormatDuration(*r.AvgDuration))
	}
	if r.AvgWords != nil {
		cmd.Printf("Avg words:      %.1f\n", *r.AvgWords)
	}
	if r.QualityScore != nil {
		cmd.Printf("Quality score:  %.3f\n", *r.QualityScore)
	}
	if r.FirstEntry != nil && r.LastEntry != nil {
		cmd.Printf("Range:          %s to %s\n",
			r.FirstEntry.Local().Format("2006-01-02"),
			r.LastEntry.Local().Format("2006-01-02"))
	}
	if len(r.StatusBreakdown) > 0 {
		cmd.Println("Statuses:")
		statuses := make([]string, 0, len(r.StatusBreakdown))
		for s := range r.StatusBreakdown {
			statuses = append(statuses, s)
		}
		sort.Slice(statuses, func(i, j int) bool {
			if r.StatusBreakdown[statuses[i]] != r.StatusBreakdown[statuses[j]] {
				return r.StatusBreakdown[statuses[i]] > r.StatusBreakdown[statuses[j]]
			}
			return statuses[i] < statuses[j]
		})
		for _, s := range statuses {
			cmd.Println(fmt.Sprintf("  %-16s %d", s, r.StatusBreakdown[s]))
		}
	}
	if r.DatabasePath != "" {
		cmd.Printf("Database:       %s\n", r.DatabasePath)
	}
}
