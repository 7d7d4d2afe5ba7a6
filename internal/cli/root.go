// Package cli wires the cobra command tree. Commands build typed dispatch
// requests and render results; all query logic lives behind the dispatcher.
package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulff/flowscribe/internal/config"
	"github.com/jwulff/flowscribe/internal/dispatch"
	"github.com/jwulff/flowscribe/internal/output"
	"github.com/jwulff/flowscribe/internal/store"
	"github.com/jwulff/flowscribe/internal/version"
)

// Dependencies carries the resolved configuration and the flag overrides
// shared by every command.
type Dependencies struct {
	Config  config.Config
	Now     func() time.Time
	DBPath  string // --db-path override
	NoColor bool   // --no-color
}

// Dispatcher builds a dispatcher over the effective database path.
func (d *Dependencies) Dispatcher() *dispatch.Dispatcher {
	path := d.DBPath
	if path == "" {
		path = d.Config.DatabasePath
	}
	return dispatch.New(store.New(path), d.Now)
}

// Formatter builds an output formatter honoring the color settings.
func (d *Dependencies) Formatter(w io.Writer) *output.Formatter {
	return output.NewFormatter(w, d.NoColor || d.Config.NoColor)
}

// NewRootCmd assembles the command tree.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flowscribe",
		Short: "Query and analyze your dictation history",
		Long: `flowscribe gives read-only access to the Wispr Flow transcription
database: filtered listings, text search, conversation grouping, usage
statistics, and per-day word collection.

Date expressions are relative (1h, 2d, 3w, 1m, 1y) or absolute
(2024-01-01, 2024-01-01 10:30).`,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.PersistentFlags().StringVar(&deps.DBPath, "db-path", "", "path to the database (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVar(&deps.NoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newListCmd(deps))
	rootCmd.AddCommand(newSearchCmd(deps))
	rootCmd.AddCommand(newShowCmd(deps))
	rootCmd.AddCommand(newStatsCmd(deps))
	rootCmd.AddCommand(newAppsCmd(deps))
	rootCmd.AddCommand(newExportCmd(deps))
	rootCmd.AddCommand(newCollectCmd(deps))
	rootCmd.AddCommand(newConversationsCmd(deps))
	rootCmd.AddCommand(newDictionaryCmd(deps))

	return rootCmd
}
