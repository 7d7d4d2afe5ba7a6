package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/dispatch"
)

func newShowCmd(deps *Dependencies) *cobra.Command {
	var (
		format      string
		showContext bool
		allVersions bool
	)

	cmd := &cobra.Command{
		Use:   "show <transcript-id>",
		Short: "Show one transcript (full ID or prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Dispatcher().Dispatch(dispatch.ShowRequest{ID: args[0]})
			if err != nil {
				return err
			}
			result := res.(dispatch.ShowResult)
			out := deps.Formatter(os.Stdout)
			if format == "json" {
				return out.JSON(result)
			}
			ctx := result.Context
			if !showContext {
				ctx = nil
			}
			out.Entry(result.Entry, allVersions, ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&showContext, "show-context", false, "show additional context information")
	cmd.Flags().BoolVar(&allVersions, "show-all-versions", false, "show ASR, formatted, and edited versions")

	return cmd
}
