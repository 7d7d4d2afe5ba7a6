package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/dispatch"
	"github.com/jwulff/flowscribe/internal/errs"
)

func newCollectCmd(deps *Dependencies) *cobra.Command {
	req := dispatch.CollectRequest{}
	var (
		format    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "collect [output-dir]",
		Short: "Collect dictated words into per-day text files",
		Long: `Collect gathers what you dictated, one file per calendar day, and writes
the files into the output directory (default: the configured backup
directory). Existing day files are left alone unless --overwrite is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := deps.Config.BackupDir
			if len(args) > 0 {
				dir = args[0]
			}
			req.Form = format

			res, err := deps.Dispatcher().Dispatch(req)
			if err != nil {
				return err
			}
			result := res.(dispatch.CollectResult)
			out := deps.Formatter(os.Stdout)
			if len(result.Days) == 0 {
				out.Info("Nothing to collect.")
				return nil
			}

			if dir == "" {
				return errs.New(errs.InvalidParameters, "no output directory: pass one or set FLOW_BACKUP_DIR")
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			written, skipped := 0, 0
			for _, day := range result.Days {
				path := filepath.Join(dir, day.Date+".txt")
				if !overwrite {
					if _, err := os.Stat(path); err == nil {
						skipped++
						continue
					}
				}
				if err := os.WriteFile(path, []byte(day.Body), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				written++
			}

			out.Success(fmt.Sprintf("Collected %d entries (%d words) across %d days",
				result.TotalEntries, result.TotalWords, len(result.Days)))
			out.Info(fmt.Sprintf("Wrote %d files to %s (%d already present)", written, dir, skipped))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Since, "since", "7d", "start of the date range (1h, 2d, 3w, 2024-01-01)")
	cmd.Flags().StringVar(&req.Until, "until", "", "end of the date range")
	cmd.Flags().StringVar(&req.App, "app", "", "filter by app name or bundle identifier")
	cmd.Flags().StringVar(&format, "form", "raw", "file form (raw, words, sentences, entries)")
	cmd.Flags().IntVar(&req.MinWords, "min-words", 0, "drop entries with fewer words")
	cmd.Flags().BoolVar(&req.ExcludeShort, "exclude-short", false, "drop very short entries")
	cmd.Flags().StringSliceVar(&req.ExcludeApps, "exclude-app", nil, "drop entries from matching apps (repeatable)")

	return cmd
}
