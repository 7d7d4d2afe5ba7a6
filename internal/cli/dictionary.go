package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/dispatch"
	"github.com/jwulff/flowscribe/internal/output"
)

func newDictionaryCmd(deps *Dependencies) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dictionary",
		Short: "List custom dictionary entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Dispatcher().Dispatch(dispatch.DictionaryRequest{})
			if err != nil {
				return err
			}
			result := res.(dispatch.DictionaryResult)
			out := deps.Formatter(os.Stdout)
			if format == "json" {
				return out.JSON(result)
			}
			if result.Count == 0 {
				out.Info("No dictionary entries found.")
				return nil
			}
			cmd.Printf("%-28s  %-20s  %6s  %-8s\n", "PHRASE", "REPLACEMENT", "USED", "SOURCE")
			for _, e := range result.Entries {
				source := e.Source
				if e.ManualEntry && source == "" {
					source = "manual"
				}
				cmd.Printf("%-28s  %-20s  %6d  %-8s\n",
					output.Truncate(e.Phrase, 28),
					output.Truncate(e.Replacement, 20),
					e.FrequencyUsed, source)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format (table, json)")

	return cmd
}
