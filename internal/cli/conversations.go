package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/dispatch"
)

func newConversationsCmd(deps *Dependencies) *cobra.Command {
	req := dispatch.ConversationsRequest{}
	var (
		format   string
		markdown bool
	)

	cmd := &cobra.Command{
		Use:   "conversations [conversation-id]",
		Short: "List conversations or show one by id",
		Long: `Without an argument, conversations lists recent conversation threads,
most recently active first. With a conversation id it shows that
conversation in full.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := deps.Formatter(os.Stdout)

			if len(args) == 1 {
				res, err := deps.Dispatcher().Dispatch(dispatch.ConversationRequest{
					ID:       args[0],
					Markdown: markdown,
				})
				if err != nil {
					return err
				}
				result := res.(dispatch.ConversationResult)
				switch {
				case format == "json":
					return out.JSON(result)
				case markdown:
					fmt.Fprint(cmd.OutOrStdout(), result.Markdown)
				default:
					conv := result.Conversation
					out.Info(fmt.Sprintf("Conversation %s (%s): %d entries, %d words",
						conv.ID, conv.AppName(), conv.EntryCount(), conv.TotalWords()))
					out.EntryTable(conv.Entries, false)
				}
				return nil
			}

			res, err := deps.Dispatcher().Dispatch(req)
			if err != nil {
				return err
			}
			result := res.(dispatch.ConversationsResult)
			if format == "json" {
				return out.JSON(result)
			}
			if result.Count == 0 {
				out.Info("No conversations found.")
				return nil
			}
			out.ConversationTable(result.Conversations)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Since, "since", "", "start of the date range (1h, 2d, 3w, 2024-01-01)")
	cmd.Flags().StringVar(&req.Until, "until", "", "end of the date range")
	cmd.Flags().StringVar(&req.App, "app", "", "filter by app name or bundle identifier")
	cmd.Flags().IntVarP(&req.Limit, "limit", "l", 10, "maximum number of conversations")
	cmd.Flags().BoolVar(&req.IncludeSingles, "include-singletons", false, "include single-entry conversations")
	cmd.Flags().BoolVar(&req.IncludeArchived, "include-archived", false, "include archived entries")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render a single conversation as markdown")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table, json)")

	return cmd
}
