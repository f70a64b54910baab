// Package main implements the contextpilot CLI: index a repository's line
// provenance and serve authors/co-edited-files/history queries against
// the resulting workspace DB.
//
// File index:
//   - main.go        - entry point, rootCmd, global flags
//   - cmd_index.go   - index subcommand
//   - cmd_query.go   - query subcommand
//   - cmd_watch.go   - watch subcommand (fsnotify-driven incremental reindex)
//   - cmd_browse.go  - browse subcommand (bubbletea TUI)
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"contextpilot/internal/logging"
	"contextpilot/internal/workspace"
)

// Exit codes per the query surface contract.
const (
	ExitSuccess            = 0
	ExitInvalidArguments   = 2
	ExitIOFailure          = 3
	ExitHistoryUnavailable = 4
)

var (
	workspaceDir string
	workspaceArg string
	verbose      bool
	timeout      time.Duration

	logger *zap.Logger
	ws     *workspace.Workspace
)

var rootCmd = &cobra.Command{
	Use:   "contextpilot",
	Short: "Line-provenance engine: who touched this line, and what else changed with it",
	Long: `contextpilot reconstructs, for every line of every tracked file in a
repository, the ordered list of revisions that ever touched that line, and
serves authors / co-edited-files / history queries against the resulting
index without rescanning history on every call.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		repoRoot := workspaceDir
		if repoRoot == "" {
			repoRoot, _ = os.Getwd()
		}
		w, err := workspace.Resolve(repoRoot, workspaceArg)
		if err != nil {
			return fmt.Errorf("resolve workspace: %w", err)
		}
		if err := w.EnsureDirs(); err != nil {
			return fmt.Errorf("prepare workspace: %w", err)
		}
		ws = w

		if err := logging.Initialize(ws.DBRoot); err != nil {
			fmt.Fprintf(os.Stderr, "warning: file logging not initialized: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "repo", "r", "", "Repository root (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&workspaceArg, "workspace", "w", "", "Workspace name under ~/.context_pilot_db (default: repo basename)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(indexCmd, queryCmd, watchCmd, browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
</content>
